package model

import (
	"flag"
	"math"

	"github.com/wildstyl3r/gbeam/internal/config"
	"github.com/wildstyl3r/gbeam/internal/optics"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64, labels []string)
	xUnit       []config.UnitElement
	yUnit       []config.UnitElement
}

type DataFlags struct {
	all         *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

var length = []config.UnitElement{{Class: config.Length, Power: 1}}

// NewDataFlags registers one flag per data item on fs.
func NewDataFlags(fs *flag.FlagSet) DataFlags {
	return DataFlags{
		all: fs.Bool("all", false, "save every available data item"),
		sequentials: map[string]SequentialDataItem{
			"Beam radius": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("w", true, "save beam radius"),
					fileSuffix: "w",
				},
				columnNames: []string{"z", "w"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for i, z := range de.result.Positions {
						args = append(args, z)
						values = append(values, []float64{de.result.Radius[i]})
					}
					return args, values, nil
				},
				xUnit: length,
				yUnit: length,
			},
			"Curvature radius": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("rc", false, "save wavefront curvature radius"),
					fileSuffix: "R",
				},
				columnNames: []string{"z", "R"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for i, z := range de.result.Positions {
						args = append(args, z)
						values = append(values, []float64{de.result.Curvature[i]})
					}
					return args, values, nil
				},
				xUnit: length,
				yUnit: length,
			},
			"Elements": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("e", false, "save element placement"),
					fileSuffix: "elements",
				},
				columnNames: []string{"z", "extent", "diameter", "focal"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for _, e := range de.result.Elements {
						focal := math.NaN()
						if l, ok := e.(optics.ThinLens); ok {
							focal = l.Focal
						}
						args = append(args, e.Location())
						values = append(values, []float64{e.Extent(), e.Diameter(), focal})
					}
					return args, values, nil
				},
				xUnit: length,
				yUnit: length,
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	if path != "" && path[len(path)-1] != '/' {
		df.outputPath = path + "/"
	} else {
		df.outputPath = path
	}
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}
