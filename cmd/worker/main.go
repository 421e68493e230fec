package main

import (
	"context"
	"log"
	"os"

	"styleforecastapi/dbhelper"
	"styleforecastapi/tasks"

	"github.com/hibiken/asynq"
)

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	archiveTask, err := tasks.NewArchivePlansTask("")
	if err != nil {
		log.Fatalf("Failed to build archive task: %v", err)
	}

	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "30 3 * * *", // 03:30 daily, after the day rolls over everywhere
			task: archiveTask,
			desc: "Archive past outfit plans",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"default": 7,
		}},
	)

	mux := asynq.NewServeMux()
	db := dbhelper.SetupDB()
	mux.HandleFunc(tasks.TypeArchivePlans, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleArchivePlansTask(ctx, t, db)
	})

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
