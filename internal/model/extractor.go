package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/wildstyl3r/gbeam/internal/config"
	"github.com/wildstyl3r/gbeam/internal/utils"
)

type DataExtractor struct {
	result  *Result
	units   []string
	makeDir bool
}

func NewDataExtractor(result *Result, parameters config.RunParameters) *DataExtractor {
	return &DataExtractor{
		result:  result,
		units:   parameters.OutputUnits(),
		makeDir: parameters.MakeDir,
	}
}

func (de *DataExtractor) out(v float64, unit []config.UnitElement) string {
	return strconv.FormatFloat(config.Convert(v, unit, de.units, false), 'f', -1, 64)
}

func (de *DataExtractor) header(names []string) []string {
	unit := config.LengthUnit(de.units)
	header := make([]string, len(names))
	for i, name := range names {
		header[i] = fmt.Sprintf("%s (%s)", name, unit)
	}
	return header
}

// Save writes every selected data item of the run as CSV.
func (de *DataExtractor) Save(runName string, df DataFlags) error {
	var errs []error
	for name, output := range df.sequentials {
		if !*output.saveFlag && !*df.all {
			continue
		}
		file, err := utils.OpenFile(de.makeDir, df.outputPath, output.fileSuffix, runName)
		if err != nil {
			errs = append(errs, fmt.Errorf("unable to save %s: %w", name, err))
			continue
		}
		rows := [][]string{de.header(output.columnNames)}
		xColumnValue, yColumnValues, yLabels := output.values(de)
		if yLabels != nil {
			rows = append(rows, append([]string{""}, yLabels...))
		}
		for x := range xColumnValue {
			row := []string{de.out(xColumnValue[x], output.xUnit)}
			for i := range yColumnValues[x] {
				row = append(row, de.out(yColumnValues[x][i], output.yUnit))
			}
			rows = append(rows, row)
		}
		w := csv.NewWriter(file)
		if err := w.WriteAll(rows); err != nil {
			errs = append(errs, fmt.Errorf("error writing %s: %w", name, err))
		}
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var SummaryColumns = []string{
	"run",
	"final z", "final w", "final R",
	"waist z", "waist w",
	"min sampled w", "at z",
	"skipped samples", "clipped elements",
}

// Summary is one row per run: terminal beam state, the waist it implies
// and the smallest radius on the grid.
func (de *DataExtractor) Summary(runName string) []string {
	r := de.result
	w, _ := r.Beam.Radius()
	waistZ, waistW := r.Beam.Waist()
	row := []string{
		runName,
		de.out(r.Beam.Z(), length),
		de.out(w, length),
		de.out(r.Beam.CurvatureRadius(), length),
		de.out(waistZ, length),
		de.out(waistW, length),
	}
	if i := utils.NanArgmin(r.Radius); i >= 0 {
		row = append(row, de.out(r.Radius[i], length), de.out(r.Positions[i], length))
	} else {
		row = append(row, "NaN", "NaN")
	}
	return append(row,
		strconv.Itoa(utils.CountNaN(r.Radius)),
		strconv.Itoa(len(r.Clipped)),
	)
}
