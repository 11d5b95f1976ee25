package main

import (
	"database/sql"

	"github.com/oinstituto/atlas/apps"
	"github.com/oinstituto/atlas/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return apps.NewArgumentError("migrations only run against postgres (database.engine=" + cli.conf.Database.Engine + ")")
	}
	return runMigration(cli.db, args)
}

func runMigration(db *sql.DB, args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(db, args[0], arguments...)
}
