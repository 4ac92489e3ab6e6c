package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"exampulse/domain/core"
	"exampulse/domain/student"
	"exampulse/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

var _ ports.RecordSource = (*DataReader)(nil)

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// WithSheet selects a worksheet other than the workbook's first one
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// Name identifies the source
func (r *DataReader) Name() string {
	return r.fileType + ":" + filepath.Base(r.filePath)
}

// Fetch reads the file and converts every row into a student record
func (r *DataReader) Fetch(ctx context.Context) ([]student.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ToRecords(data)
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the configured sheet (first sheet by default)
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "﻿"))
	}

	var dataRows []RawRowData
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowData := make(RawRowData)
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// ToRecords maps sheet rows onto student records. Rows without an id column
// are numbered from 1 in file order.
func ToRecords(data *ExcelData) ([]student.Record, error) {
	columns, err := resolveColumns(data.Headers)
	if err != nil {
		return nil, err
	}

	records := make([]student.Record, 0, len(data.Rows))
	for i, row := range data.Rows {
		line := i + 2
		id := strconv.Itoa(i + 1)
		if col, ok := columns["id"]; ok && row[col] != "" {
			id = row[col]
		}

		rec := student.Record{ID: id}
		if rec.Gender, err = student.ParseGender(row[columns["gender"]]); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if rec.ParentalEducation, err = student.ParseParentalEducation(row[columns["parentalEducation"]]); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if rec.TestPrep, err = student.ParseTestPrep(row[columns["testPrep"]]); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if rec.MathScore, err = parseScore(row[columns["math"]]); err != nil {
			return nil, fmt.Errorf("row %d math: %w", line, err)
		}
		if rec.ReadingScore, err = parseScore(row[columns["reading"]]); err != nil {
			return nil, fmt.Errorf("row %d reading: %w", line, err)
		}
		if rec.WritingScore, err = parseScore(row[columns["writing"]]); err != nil {
			return nil, fmt.Errorf("row %d writing: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func resolveColumns(headers []string) (map[string]string, error) {
	byKey := make(map[string]string, len(headers))
	for _, h := range headers {
		byKey[strings.ToLower(strings.TrimSpace(h))] = h
	}

	columns := make(map[string]string, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if h, ok := byKey[alias]; ok {
				columns[field] = h
				break
			}
		}
		if _, ok := columns[field]; !ok && field != "id" {
			return nil, fmt.Errorf("%w: missing column for %s", core.ErrInvalidRecord, field)
		}
	}
	return columns, nil
}

func parseScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not a number", core.ErrInvalidRecord, s)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
