package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/crewclock/crewclock-backend-go/internal/config"
	appHTTP "github.com/crewclock/crewclock-backend-go/internal/handler/http"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/cron"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/jwt"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/oauth"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/policy"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/snapshot"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/sse"
	"github.com/crewclock/crewclock-backend-go/internal/repository/postgresql"
	authService "github.com/crewclock/crewclock-backend-go/internal/service/auth"
	masterService "github.com/crewclock/crewclock-backend-go/internal/service/master"
	notificationService "github.com/crewclock/crewclock-backend-go/internal/service/notification"
	payrollService "github.com/crewclock/crewclock-backend-go/internal/service/payroll"
	shiftService "github.com/crewclock/crewclock-backend-go/internal/service/shift"
	worklogService "github.com/crewclock/crewclock-backend-go/internal/service/worklog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	snapshots, err := snapshot.Open(cfg.Snapshot.Path)
	if err != nil {
		fmt.Println("Error opening snapshot store:", err)
		return
	}
	defer snapshots.Close()

	userRepo := postgresql.NewUserRepository(db)
	orgRepo := postgresql.NewOrganizationRepository(db)
	positionRepo := postgresql.NewPositionRepository(db)
	machineRepo := postgresql.NewMachineRepository(db)
	worklogRepo := postgresql.NewWorkLogRepository(db)
	shiftRepo := postgresql.NewActiveShiftRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	// Device clocks drift; durations are computed against an offset
	// clock periodically realigned with the database clock.
	clk := clock.NewOffsetClock()
	hub := sse.NewHub()
	evaluator := policy.NewEvaluator()

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleSvc := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	notifierSvc := notificationService.NewNotificationService(notificationRepo, hub, clk)
	defer notifierSvc.Stop()

	shiftSvc := shiftService.NewShiftService(
		worklogRepo,
		shiftRepo,
		userRepo,
		positionRepo,
		machineRepo,
		orgRepo,
		evaluator,
		clk,
		hub,
		notifierSvc,
		snapshots,
		cfg.Shift.MachineStaleAfter,
	)
	worklogSvc := worklogService.NewWorkLogService(
		worklogRepo,
		shiftSvc,
		userRepo,
		positionRepo,
		orgRepo,
		evaluator,
		clk,
		hub,
		notifierSvc,
		snapshots,
		cfg.Shift.MaxCorrectionMinutes,
	)
	payrollSvc := payrollService.NewPayrollService(worklogRepo, userRepo, positionRepo, orgRepo, evaluator)
	authSvc := authService.NewAuthService(userRepo, jwtSvc, googleSvc)
	masterSvc := masterService.NewMasterService(machineRepo, positionRepo, userRepo, shiftSvc)

	watcher := cron.NewOvertimeWatcher(orgRepo, worklogRepo, userRepo, positionRepo, notifierSvc, clk, cfg.Shift.OvertimeGraceMinutes)
	clockSync := cron.NewClockSync(db.ServerTime, clk)
	scheduler := cron.NewScheduler()
	watcher.RegisterJobs(scheduler, cfg.Shift.OvertimeCheckInterval)
	clockSync.RegisterJobs(scheduler, cfg.Shift.ClockSyncInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(jwtSvc, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(jwtSvc, authSvc, googleSvc),
		Shift:        appHTTP.NewShiftHandler(shiftSvc),
		WorkLog:      appHTTP.NewWorkLogHandler(worklogSvc),
		Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
		Master:       appHTTP.NewMasterHandler(masterSvc),
		Notification: appHTTP.NewNotificationHandler(notifierSvc),
		Events:       appHTTP.NewEventsHandler(jwtSvc, hub),
	}, []string{cfg.App.FrontendURL})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("Shutting down")
	_ = server.Close()
}
