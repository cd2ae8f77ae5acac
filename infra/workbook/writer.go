package workbook

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/courtsched/pkg/export"
)

// Write saves the datasets to path, one sheet per dataset in order.
func Write(path string, datasets ...export.Dataset) error {
	f, err := build(datasets)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// WriteTo streams the datasets as an xlsx document to w.
func WriteTo(w io.Writer, datasets ...export.Dataset) error {
	f, err := build(datasets)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteTo(w)
	return err
}

func build(datasets []export.Dataset) (*excelize.File, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("workbook requires at least one dataset")
	}
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	first := f.GetSheetName(0)
	for _, d := range datasets {
		if err := writeSheet(f, d, bold); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", d.Name, err)
		}
	}
	if !contains(datasets, first) {
		if err := f.DeleteSheet(first); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if idx, err := f.GetSheetIndex(datasets[0].Name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func writeSheet(f *excelize.File, d export.Dataset, headerStyle int) error {
	if d.Name == "" {
		return fmt.Errorf("dataset has no name")
	}
	if _, err := f.NewSheet(d.Name); err != nil {
		return err
	}
	header := make([]interface{}, len(d.Headers))
	for i, h := range d.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(d.Name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(d.Name, 1, 1, headerStyle); err != nil {
		return err
	}
	for n, rec := range d.Records() {
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			row[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(d.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cellValue stores canonical whole numbers as numeric cells.
func cellValue(v string) interface{} {
	if i, err := strconv.Atoi(v); err == nil && strconv.Itoa(i) == v {
		return i
	}
	return v
}

func contains(datasets []export.Dataset, name string) bool {
	for _, d := range datasets {
		if d.Name == name {
			return true
		}
	}
	return false
}
