package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/wizard"
)

// ImportService handles CSV imports of companies.
type ImportService struct {
	Catalog *Catalog
	Log     *zap.Logger
}

type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// csvColumns is the import column order. Only name is required; trailing
// columns may be omitted.
var csvColumns = []wizard.Field{
	wizard.FieldName,
	wizard.FieldTicker,
	wizard.FieldStage,
	wizard.FieldTherapeuticArea,
	wizard.FieldCashPosition,
	wizard.FieldBurnRate,
}

// ImportCSV reads name, ticker, stage, area, cash, burn rows. A header row is
// recognised by its first cell and skipped. Companies that already exist are
// counted as skipped; bad rows are collected in Errors and do not stop the
// import.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.Comment = '#'
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a bad row is recoverable, a failing reader is not
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return res, fmt.Errorf("read csv: %w", err)
			}
			res.Errors = append(res.Errors, err)
			continue
		}
		line, _ := csvr.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
				continue
			}
		}

		var d wizard.Draft
		var fieldErr error
		for i, f := range csvColumns {
			if i >= len(rec) {
				break
			}
			if err := d.Set(f, strings.TrimSpace(rec[i])); err != nil {
				fieldErr = err
				break
			}
		}
		if fieldErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, fieldErr))
			continue
		}
		if _, err := s.Catalog.Create(ctx, d); err != nil {
			if errors.Is(err, ErrDuplicateCompany) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Imported++
	}
	if s.Log != nil {
		s.Log.Info("csv import finished",
			zap.Int("imported", res.Imported),
			zap.Int("skipped", res.Skipped),
			zap.Int("errors", len(res.Errors)))
	}
	return res, nil
}

// ImportFile is ImportCSV over a file on disk.
func (s *ImportService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return s.ImportCSV(ctx, f)
}
