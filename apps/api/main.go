package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/studysitare/portal/apps/api/echo"
	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/progress"
	"github.com/studysitare/portal/core/user"
	"github.com/studysitare/portal/seed"
	emailsvc "github.com/studysitare/portal/services/email"
	logsvc "github.com/studysitare/portal/services/logger"
	"github.com/studysitare/portal/storage/database"
	sqliterepos "github.com/studysitare/portal/storage/database/sqlite"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	debug := core.Conf.GetBool("debug")

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std)
	}

	// set up DB
	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up repos & services
	usrRepo := sqliterepos.NewUserRepository(db)
	subjRepo := sqliterepos.NewSubjectRepository(db)
	progRepo := sqliterepos.NewProgressRepository(db)

	var mailSvc core.EmailService
	if debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(usrRepo, mailSvc)
	catSvc := catalog.NewService(subjRepo)
	progSvc := progress.NewService(progRepo, subjRepo)

	// seed data: one admin account + the fixed subject list
	if err = seed.Ensure(context.Background(), usrRepo, subjRepo); err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("%s initializing : env %q", core.Conf.GetString("appName"), core.Conf.GetString("env")))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.GetString("serverAddress"),
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			UserSvc:     usrSvc,
			CatalogSvc:  catSvc,
			ProgressSvc: progSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.GetDuration("shutdownTimeout"))
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	db, err := database.Open(core.Conf.GetString("databasePath"))
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
