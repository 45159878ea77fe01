package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"github.com/nats-io/nats.go"
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/mutate"
	"github.com/snapcopy/api/data/query"
	"github.com/snapcopy/api/internal/api/realtime"
	"github.com/snapcopy/api/internal/api/rest"
	restmw "github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/v1/routes"
	"github.com/snapcopy/api/internal/configure"
	"github.com/snapcopy/api/internal/global"
	"github.com/snapcopy/api/internal/health"
	"github.com/snapcopy/api/internal/loaders"
	"github.com/snapcopy/api/internal/monitoring"
	"github.com/snapcopy/api/internal/pprof"
	"github.com/snapcopy/api/internal/svc/auth"
	"github.com/snapcopy/api/internal/svc/calls"
	"github.com/snapcopy/api/internal/svc/limiter"
	"github.com/snapcopy/api/internal/svc/messages"
	"github.com/snapcopy/api/internal/svc/mongo"
	"github.com/snapcopy/api/internal/svc/presences"
	"github.com/snapcopy/api/internal/svc/prometheus"
	"github.com/snapcopy/api/internal/svc/s3"
	"github.com/snapcopy/api/internal/svc/statuses"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	debug.SetGCPercent(2000)
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}

	routes.Version = Version
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		zap.S().Errorw("panic detected",
			"panic", s,
		)
	})
	if err != nil {
		zap.S().Errorw("failed to setup panic handler",
			"error", err,
		)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		zap.S().Info("Snapcopy API")
		zap.S().Infof("Version: %s", Version)
		zap.S().Infof("build.Time: %s", Time)
		zap.S().Infof("build.User: %s", User)
	}

	zap.S().Debugf("MaxProcs: %d", runtime.GOMAXPROCS(0))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))
	inst := gCtx.Inst()

	{
		inst.Prometheus = prometheus.New(prometheus.Options{
			Labels: config.Monitoring.Labels.ToPrometheus(),
		})
	}

	{
		ctx, cancel := context.WithTimeout(gCtx, time.Second*15)

		inst.Mongo, err = mongo.Setup(ctx, mongo.SetupOptions{
			URI:       config.Mongo.URI,
			DB:        config.Mongo.DB,
			Username:  config.Mongo.Username,
			Password:  config.Mongo.Password,
			Direct:    config.Mongo.Direct,
			StatusTTL: config.Status.TTL,
		})

		cancel()

		if err != nil {
			zap.S().Fatalw("failed to setup mongo handler",
				"error", err,
			)
		}

		inst.Query = query.New(inst.Mongo)
		inst.Mutate = mutate.New(mutate.InstanceOptions{
			Mongo: inst.Mongo,
		})
	}

	if config.S3.Enabled {
		st, err := s3.New(gCtx, s3.Options{
			Region:      config.S3.Region,
			Endpoint:    config.S3.Endpoint,
			AccessToken: config.S3.AccessToken,
			SecretKey:   config.S3.SecretKey,
		})
		if err != nil {
			zap.S().Fatalw("failed to setup s3 handler",
				"error", err,
			)
		}

		inst.S3 = st
	}

	{
		inst.Auth = auth.New(auth.AuthorizerOptions{
			JWTSecret: config.Credentials.JWTSecret,
			Domain:    config.Http.Cookie.Domain,
			Secure:    config.Http.Cookie.Secure,
		})
		inst.Modelizer = model.NewInstance(model.ModelInstanceOptions{
			MediaURL: config.MediaURL,
		})
		inst.Loaders = loaders.New(gCtx, inst.Query)
		inst.Presences = presences.New(presences.Options{
			OnTransitionDropped: inst.Prometheus.PresenceTransitionDropped,
		})
	}

	{
		var nc *nats.Conn

		if config.Nats.Enabled {
			nc, err = nats.Connect(config.Nats.URL,
				nats.Name("snapcopy-api"),
				nats.MaxReconnects(-1),
				nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
					zap.S().Warnw("nats disconnected",
						"error", err,
					)
				}),
				nats.ReconnectHandler(func(c *nats.Conn) {
					zap.S().Infow("nats reconnected",
						"url", c.ConnectedUrl(),
					)
				}),
			)
			if err != nil {
				zap.S().Fatalw("failed to connect to nats",
					"error", err,
				)
			}

			inst.Events, err = events.NewNats(gCtx, events.NatsOptions{
				Conn:     nc,
				Subject:  config.Nats.Subject,
				Registry: inst.Presences,
				Metrics:  inst.Prometheus,
			})
			if err != nil {
				zap.S().Fatalw("failed to subscribe to nats",
					"error", err,
				)
			}

			go func() {
				<-gCtx.Done()
				nc.Close()
			}()
		} else {
			inst.Events = events.NewLocal(inst.Presences, inst.Prometheus)
		}
	}

	{
		inst.Limiter = limiter.New(map[string]limiter.Bucket{
			realtime.LimiterBucket: {
				Limit: rate.Limit(config.Limits.EventsPerSecond),
				Burst: config.Limits.EventBurst,
			},
			restmw.RestBucket: limiter.PerMinute(config.Limits.RestPerMinute),
		}, time.Minute*10)

		go inst.Limiter.Run(gCtx, time.Minute)
	}

	{
		inst.Messages = messages.New(messages.Options{
			Reader:    inst.Query,
			Writer:    inst.Mutate,
			Users:     inst.Loaders,
			Relations: inst.Query,
			Modelizer: inst.Modelizer,
		})

		opt := statuses.Options{
			Reader:         inst.Query,
			Writer:         inst.Mutate,
			Users:          inst.Loaders,
			Relations:      inst.Query,
			Modelizer:      inst.Modelizer,
			Metrics:        inst.Prometheus,
			TTL:            config.Status.TTL,
			MaxItems:       config.Limits.MaxStatusItems,
			MaxUploadBytes: config.Limits.MaxUploadBytes,
			Policy:         config.Status.ViewerPolicy,
			Bucket:         config.S3.PublicBucket,
			PublicURL:      config.S3.PublicURL,
		}
		if inst.S3 != nil {
			opt.Storage = inst.S3
		}

		inst.Statuses = statuses.New(opt)
		inst.Calls = calls.New(inst.Events)
	}

	wg := sync.WaitGroup{}

	if config.Status.SweepCron != "" {
		swept, err := inst.Statuses.RunSweeper(gCtx, config.Status.SweepCron)
		if err != nil {
			zap.S().Fatalw("failed to start status sweeper",
				"error", err,
			)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-swept
		}()
	}

	router := realtime.NewRouter(realtime.RouterOptions{
		Messages:       inst.Messages,
		Statuses:       inst.Statuses,
		Calls:          inst.Calls,
		Events:         inst.Events,
		Presences:      inst.Presences,
		Relations:      inst.Query,
		Auth:           inst.Auth,
		Limiter:        inst.Limiter,
		Metrics:        inst.Prometheus,
		HandlerTimeout: time.Duration(config.Realtime.HandlerTimeout) * time.Millisecond,
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-router.RunPresence(gCtx)
	}()

	if gCtx.Config().Health.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-health.New(gCtx)
		}()
	}
	if gCtx.Config().Monitoring.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-monitoring.New(gCtx)
		}()
	}
	if gCtx.Config().PProf.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-pprof.New(gCtx)
		}()
	}

	done := make(chan struct{})
	go func() {
		<-sig
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			zap.S().Fatal("force shutdown")
		}()

		zap.S().Info("shutting down")

		wg.Wait()

		if inst.Mongo != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			_ = inst.Mongo.Close(ctx)
			cancel()
		}

		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rest.New(gCtx, realtime.New(gCtx, router)); err != nil {
			zap.S().Fatalw("rest failed",
				"error", err,
			)
		}
	}()

	zap.S().Info("running")

	<-done

	zap.S().Info("shutdown")
	os.Exit(0)
}
