package csvoptions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/csvoptions"
	"github.com/quesnel/efyj-go/model"
)

func buildModel() *model.Model {
	scale := model.Scale{Ordered: true, Values: []model.ScaleValue{{Name: "low"}, {Name: "high"}}}
	return &model.Model{
		Attributes: []model.Attribute{
			{Name: "ROOT", Scale: scale, Children: []int{1, 2}, Function: model.Function{Low: model.EncodeRows([]int{0, 0, 0, 1})}},
			{Name: "PRICE", Scale: scale},
			{Name: "TECH", Scale: scale},
		},
	}
}

func TestReadMapsColumnsByNameRegardlessOfOrder(t *testing.T) {
	m := buildModel()
	csvText := "simulation;department;year;TECH;PRICE;ROOT\n" +
		"car1;1;2020;low;high;low\n"

	path := filepath.Join(t.TempDir(), "options.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvText), 0o644))

	data, err := csvoptions.Read(path, m)
	require.NoError(t, err)
	require.Len(t, data.Rows, 1)
	require.Equal(t, []string{"PRICE", "TECH"}, data.BasicNames)
	require.Equal(t, []int{1, 0}, data.Rows[0].Values) // PRICE=high(1), TECH=low(0)
	require.Equal(t, 0, data.Rows[0].Observed)
	require.Equal(t, "car1", data.Rows[0].Identifier)
}

func TestReadHandlesPlaceColumn(t *testing.T) {
	m := buildModel()
	csvText := "simulation;place;department;year;PRICE;TECH;ROOT\n" +
		"car1;3;1;2020;low;low;high\n"

	path := filepath.Join(t.TempDir(), "options.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvText), 0o644))

	data, err := csvoptions.Read(path, m)
	require.NoError(t, err)
	require.True(t, data.HasPlace)
	require.Equal(t, 3, data.Rows[0].Place)
}

func TestReadRejectsUnknownScaleValue(t *testing.T) {
	m := buildModel()
	csvText := "simulation;department;year;PRICE;TECH;ROOT\n" +
		"car1;1;2020;medium;low;low\n"

	path := filepath.Join(t.TempDir(), "options.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvText), 0o644))

	_, err := csvoptions.Read(path, m)
	require.Error(t, err)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	m := buildModel()
	csvText := "simulation;department;year;PRICE;TECH;ROOT\n" +
		"car1;1;2020;high;low;low\n" +
		"car2;2;2021;high;high;high\n"

	path := filepath.Join(t.TempDir(), "options.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvText), 0o644))

	data, err := csvoptions.Read(path, m)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, csvoptions.Write(out, data, m))

	again, err := csvoptions.Read(out, m)
	require.NoError(t, err)
	require.Equal(t, data.Rows, again.Rows)
}
