package main

import (
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	echoapi "github.com/trezcool/mtihani/apps/api/echo"
	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/exam"
	"github.com/trezcool/mtihani/core/gateway"
	emailsvc "github.com/trezcool/mtihani/services/email"
	sendgridmail "github.com/trezcool/mtihani/services/email/sendgrid"
	logsvc "github.com/trezcool/mtihani/services/logger"
	"github.com/trezcool/mtihani/storage/database"
	inmemdb "github.com/trezcool/mtihani/storage/database/inmem"
	sqlxrepos "github.com/trezcool/mtihani/storage/database/sqlx"
	memstore "github.com/trezcool/mtihani/storage/memory"
	redisstore "github.com/trezcool/mtihani/storage/redis"
)

func main() {
	conf := core.Conf
	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)

	// set up services
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(conf, logger)
	}

	// governance stores: redis when configured, in-process otherwise
	var (
		counters  gateway.CounterStore
		suspicion gateway.SuspicionStore
	)
	if conf.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		counters = redisstore.NewCounterStore(rdb)
		suspicion = redisstore.NewSuspicionStore(rdb)
	} else {
		counters = memstore.NewCounterStore()
		suspicion = memstore.NewSuspicionStore()
	}

	// exam repositories: in-mem in debug, postgres otherwise
	var (
		questionRepo   exam.QuestionRepository
		submissionRepo exam.SubmissionRepository
	)
	if conf.Debug {
		db := inmemdb.Open()
		questionRepo = inmemdb.NewQuestionRepository(db)
		submissionRepo = inmemdb.NewSubmissionRepository(db)
	} else {
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()
		questionRepo = sqlxrepos.NewQuestionRepository(db)
		submissionRepo = sqlxrepos.NewSubmissionRepository(db)
	}

	examSvc := exam.NewService(questionRepo, submissionRepo, logger)

	// governance pipeline
	gwConf := gatewayConfig(conf)
	errAndDie(gwConf.Validate())

	denials := gateway.NewDenialLog(256)
	alerts := gateway.NewAlertNotifier(mailSvc, conf.SecurityEmail)
	pipeline := gateway.NewPipeline(
		gateway.NewAccessGate(gwConf, logger),
		gateway.NewRateLimiter(counters, gwConf, logger),
		gateway.NewDetector(suspicion, gwConf, nil, logger),
		denials.Hook(),
		alerts.Hook(),
	)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Addr:     conf.Server.Address(),
		ExamSvc:  examSvc,
		Pipeline: pipeline,
		Denials:  denials,
		Logger:   logger,
	})
	app.Start()
}

func gatewayConfig(conf *core.Config) gateway.Config {
	return gateway.Config{
		Window: conf.Gateway.Window,
		Quotas: map[gateway.OperationClass]int64{
			gateway.OpLogin:          conf.Gateway.LoginLimit,
			gateway.OpRegistration:   conf.Gateway.RegistrationLimit,
			gateway.OpExamSubmission: conf.Gateway.SubmissionLimit,
			gateway.OpGenericAPI:     conf.Gateway.APILimit,
			gateway.OpOther:          conf.Gateway.DefaultLimit,
		},
		CadenceThreshold: conf.Gateway.CadenceThreshold,
		SuspicionTTL:     conf.Gateway.SuspicionTTL,
		TrustedOrigins:   conf.Gateway.TrustedOrigins,
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
