package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/progress"
	"github.com/studysitare/portal/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	usrRepo  user.Repository
	subjRepo catalog.Repository
	progRepo progress.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|status - run database migrations")
	fmt.Println("  addadmin -name NAME -email EMAIL - add or update an admin account; the password is prompted next")
	fmt.Println("  setprogress -student STUDENT_ID -subject SUBJECT_ID -completed N -total N - record a student's progress")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminName := addAdminCmd.String("name", "", "The admin's name.")
	addAdminEmail := addAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")

	setProgressCmd := flag.NewFlagSet("setprogress", flag.ExitOnError)
	setProgressStudent := setProgressCmd.String("student", "", "The student's student ID.")
	setProgressSubject := setProgressCmd.Int64("subject", 0, "The subject ID.")
	setProgressCompleted := setProgressCmd.Int("completed", 0, "Completed topics.")
	setProgressTotal := setProgressCmd.Int("total", 0, "Total topics.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminName == "" || *addAdminEmail == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminName, *addAdminEmail, string(pwd))
	case "setprogress":
		if err := setProgressCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setProgressStudent == "" || *setProgressSubject == 0 {
			setProgressCmd.Usage()
			return errHelp
		}
		return cli.setProgress(*setProgressStudent, *setProgressSubject, *setProgressCompleted, *setProgressTotal)
	default:
		cli.printUsage()
		return errHelp
	}
}
