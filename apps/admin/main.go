package main

import (
	"fmt"
	"log"
	"os"

	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/storage/database"
	sqliterepos "github.com/studysitare/portal/storage/database/sqlite"
)

func main() {
	db, err := database.Open(core.Conf.GetString("databasePath"))
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	cli := &commandLine{
		db:       db,
		usrRepo:  sqliterepos.NewUserRepository(db),
		subjRepo: sqliterepos.NewSubjectRepository(db),
		progRepo: sqliterepos.NewProgressRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
