package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/apps/api/di"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	blobsvc "github.com/trezcool/shule/services/blob"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	client, err := database.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db := client.Database(conf.Database.Name)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(conf, logger)

	// the CLI neither uploads nor mails
	svcs := di.NewServices(
		di.NewMongoStores(db),
		blobsvc.NewDiskStore(conf),
		emailsvc.NewConsoleService(conf, logger),
		validate,
		conf,
	)

	// start CLI
	cli := commandLine{
		usrSvc:  svcs.User,
		roleSvc: svcs.Role,
		ensureIndexes: func(ctx context.Context) error {
			return database.EnsureIndexes(ctx, db)
		},
	}
	err = cli.run(os.Args)
	_ = client.Disconnect(context.Background())
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
