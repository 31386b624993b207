// Package xmlmodel reads and writes the DEXi model file format (spec
// §6.1): a root element with metadata children and a single nested
// attribute subtree. This is the one place the transformation deliberately
// falls back to the standard library's encoding/xml instead of a
// third-party dependency — no example repository in the retrieval pack
// imports an XML library, and none offers an idiom for this schema to
// adapt (see DESIGN.md).
package xmlmodel

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/quesnel/efyj-go/internal/errs"
	"github.com/quesnel/efyj-go/model"
)

type xmlScaleValue struct {
	Name        string `xml:"NAME"`
	Description string `xml:"DESCRIPTION,omitempty"`
	Group       string `xml:"GROUP,omitempty"`
}

type xmlScale struct {
	Order  string          `xml:"ORDER,omitempty"`
	Values []xmlScaleValue `xml:"SCALEVALUE"`
}

type xmlFunction struct {
	Low     string `xml:"LOW,omitempty"`
	Entered string `xml:"ENTERED,omitempty"`
	Consist string `xml:"CONSIST,omitempty"`
	Weights string `xml:"WEIGHTS,omitempty"`
}

type xmlAttribute struct {
	Name        string         `xml:"NAME"`
	Description string         `xml:"DESCRIPTION,omitempty"`
	Scale       *xmlScale      `xml:"SCALE,omitempty"`
	Function    *xmlFunction   `xml:"FUNCTION,omitempty"`
	Options     []string       `xml:"OPTION,omitempty"`
	Children    []xmlAttribute `xml:"ATTRIBUTE,omitempty"`
}

type xmlRoot struct {
	XMLName     xml.Name     `xml:"DEXi"`
	Name        string       `xml:"NAME"`
	Version     string       `xml:"VERSION,omitempty"`
	Created     string       `xml:"CREATED,omitempty"`
	Description []string     `xml:"DESCRIPTION,omitempty"`
	Options     []string     `xml:"OPTION,omitempty"`
	Attribute   xmlAttribute `xml:"ATTRIBUTE"`
}

// orderNone is the DEXi marker for a nominal (unordered) scale.
const orderNone = "NONE"

// Read parses path into a Model, assigning attribute indices in document
// pre-order (root first, then each child subtree in file order) — the
// same order Model.Root and Model.Attributes[0] assume.
func Read(path string) (*model.Model, error) {
	const op = "xmlmodel.Read"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindFileAccess, op, err).AtLine(path, 0, 0)
	}

	var root xmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, errs.Wrap(errs.KindParseModel, op, err).AtLine(path, 0, 0)
	}
	if root.XMLName.Local != "DEXi" {
		return nil, errs.New(errs.KindParseModel, op, "root element is not DEXi").AtLine(path, 0, 0)
	}

	m := &model.Model{
		Name:        root.Name,
		Version:     root.Version,
		Created:     root.Created,
		Description: root.Description,
		Options:     root.Options,
	}

	if err := flatten(m, &root.Attribute, path); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// flatten appends a to m.Attributes in pre-order, recursing into its
// children, then resolves each attribute's per-option scale values.
func flatten(m *model.Model, a *xmlAttribute, path string) error {
	const op = "xmlmodel.Read"

	scale := model.Scale{Ordered: a.Scale == nil || a.Scale.Order != orderNone}
	if a.Scale != nil {
		scale.Values = make([]model.ScaleValue, len(a.Scale.Values))
		for i, v := range a.Scale.Values {
			group := -1
			if v.Group != "" {
				for gi, g := range m.Groups {
					if g == v.Group {
						group = gi
						break
					}
				}
				if group < 0 {
					group = len(m.Groups)
					m.Groups = append(m.Groups, v.Group)
				}
			}
			scale.Values[i] = model.ScaleValue{Name: v.Name, Description: v.Description, Group: group}
		}
	}
	if err := scale.Validate(op); err != nil {
		return errs.Wrap(errs.KindParseModel, op, err).AtLine(path, 0, 0)
	}

	index := len(m.Attributes)
	m.Attributes = append(m.Attributes, model.Attribute{
		Name:        a.Name,
		Description: a.Description,
		Scale:       scale,
	})

	var children []int
	for i := range a.Children {
		children = append(children, len(m.Attributes))
		if err := flatten(m, &a.Children[i], path); err != nil {
			return err
		}
	}

	values, err := resolveOptionValues(scale, a.Options, path)
	if err != nil {
		return err
	}

	attr := &m.Attributes[index]
	attr.Children = children
	attr.EmbeddedOptionValues = values
	if a.Function != nil {
		attr.Function = model.Function{
			Low:     a.Function.Low,
			Entered: a.Function.Entered,
			Consist: a.Function.Consist,
			Weights: a.Function.Weights,
		}
	}
	return nil
}

// resolveOptionValues converts an attribute's raw <OPTION> scale-value
// names into indices against its own scale (spec §6.1 "optional option
// values"), failing with OptionConversionFailed on an unknown name.
func resolveOptionValues(scale model.Scale, names []string, path string) ([]int, error) {
	const op = "xmlmodel.Read"
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]int, len(names))
	for i, name := range names {
		idx, ok := scale.FindValue(name)
		if !ok {
			return nil, errs.New(errs.KindParseModel, op,
				fmt.Sprintf("unknown scale value %q for embedded option", name)).AtLine(path, 0, 0)
		}
		out[i] = idx
	}
	return out, nil
}

// Write serialises m to path in the same tag layout Read expects,
// XML-escaping text content automatically via encoding/xml (spec §6.1
// "special characters... are XML-escaped").
func Write(path string, m *model.Model) error {
	const op = "xmlmodel.Write"
	if m.Empty() {
		return errs.New(errs.KindParseModel, op, "model has no attributes")
	}

	root := xmlRoot{
		Name:        m.Name,
		Version:     m.Version,
		Created:     m.Created,
		Description: m.Description,
		Options:     m.Options,
		Attribute:   unflatten(m, 0),
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindParseModel, op, err)
	}
	out = append([]byte(xml.Header), out...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errs.Wrap(errs.KindFileAccess, op, err).AtLine(path, 0, 0)
	}
	return nil
}

func unflatten(m *model.Model, index int) xmlAttribute {
	a := &m.Attributes[index]

	order := ""
	if !a.Scale.Ordered {
		order = orderNone
	}
	values := make([]xmlScaleValue, len(a.Scale.Values))
	for i, v := range a.Scale.Values {
		group := ""
		if v.Group >= 0 && v.Group < len(m.Groups) {
			group = m.Groups[v.Group]
		}
		values[i] = xmlScaleValue{Name: v.Name, Description: v.Description, Group: group}
	}

	out := xmlAttribute{
		Name:        a.Name,
		Description: a.Description,
		Scale:       &xmlScale{Order: order, Values: values},
	}
	if !a.Function.Empty() {
		out.Function = &xmlFunction{
			Low:     a.Function.Low,
			Entered: a.Function.Entered,
			Consist: a.Function.Consist,
			Weights: a.Function.Weights,
		}
	}
	if len(a.EmbeddedOptionValues) > 0 {
		out.Options = make([]string, len(a.EmbeddedOptionValues))
		for i, v := range a.EmbeddedOptionValues {
			if v >= 0 && v < len(a.Scale.Values) {
				out.Options[i] = a.Scale.Values[v].Name
			}
		}
	}
	for _, c := range a.Children {
		out.Children = append(out.Children, unflatten(m, c))
	}
	return out
}
