package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/trezcool/alama/apps/api/echo"
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/stats"
	"github.com/trezcool/alama/core/user"
	appfs "github.com/trezcool/alama/fs"
	emailsvc "github.com/trezcool/alama/services/email"
	logsvc "github.com/trezcool/alama/services/logger"
	"github.com/trezcool/alama/storage/database"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
)

// engineMemory keeps everything in memory, for demos.
const engineMemory = "memory"

type repositories struct {
	admins      user.Repository
	schools     school.Repository
	scores      score.Repository
	goals       goal.Repository
	accessCodes accesscode.Repository
	close       func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidate(translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate)
	score.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, appfs.FS, logger)

	user.LoadCommonPasswords(appfs.FS, logger)

	// set up services
	mailSvc := emailsvc.New(conf, logger)
	schoolSvc := school.NewService(repos.schools, validate)
	scoreSvc := score.NewService(repos.scores, schoolSvc, validate)
	goalSvc := goal.NewService(repos.goals, schoolSvc)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			UserSvc:       user.NewService(repos.admins, validate),
			SchoolSvc:     schoolSvc,
			ScoreSvc:      scoreSvc,
			GoalSvc:       goalSvc,
			AccessCodeSvc: accesscode.NewService(repos.accessCodes, schoolSvc, mailSvc, conf),
			StatsSvc:      stats.NewService(schoolSvc, scoreSvc, goalSvc, conf),
		},
	)

	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Addr))
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
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
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

func setUpRepositories(conf *core.Config) (*repositories, error) {
	if conf.Database.Engine == engineMemory {
		db := inmemdb.Open()
		return &repositories{
			admins:      inmemdb.NewAdminRepository(db),
			schools:     inmemdb.NewSchoolRepository(db),
			scores:      inmemdb.NewScoreRepository(db),
			goals:       inmemdb.NewGoalRepository(db),
			accessCodes: inmemdb.NewAccessCodeRepository(db),
			close:       func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &repositories{
		admins:      sqlxrepos.NewAdminRepository(db),
		schools:     sqlxrepos.NewSchoolRepository(db),
		scores:      sqlxrepos.NewScoreRepository(db),
		goals:       sqlxrepos.NewGoalRepository(db),
		accessCodes: sqlxrepos.NewAccessCodeRepository(db),
		close:       db.Close,
	}, nil
}
