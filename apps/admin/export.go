package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

const exportSheet = "Entradas"

var exportHeader = []interface{}{
	"ID", "Nome", "E-mail", "Expectativa", "Disciplina", "Série", "Conteúdo",
	"Vibe", "Espaço", "Agrupamento", "Desafio", "Plano enviado", "Criado em",
}

func exportRow(e entry.Entry) []interface{} {
	return []interface{}{
		e.ID, e.Name, e.Email, e.Expectation, e.Discipline, e.Grade, e.Content,
		e.Vibe, e.Space, e.Grouping, e.Challenge, e.PlanSent, e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// export writes every entry, oldest first, to an xlsx spreadsheet.
func (cli *commandLine) export(ctx context.Context, path string) error {
	entries, err := cli.entries.Query(ctx, core.DBOrdering{Field: "created_at", Ascending: true})
	if err != nil {
		return errors.Wrap(err, "querying entries")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err = f.SetSheetName("Sheet1", exportSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err = f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(e)
		if err = f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing entry %s", e.ID)
		}
	}
	if err = f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}

	_, _ = fmt.Fprintf(cli.out, "%d entries exported to %s\n", len(entries), path)
	return nil
}
