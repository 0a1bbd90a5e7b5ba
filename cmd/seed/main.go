// Command main runs the demo data seeder for Empleos Inclusivos.
package main

import (
	"context"
	"flag"
	"log"

	"empleos/internal/config"
	"empleos/internal/database"
	"empleos/internal/seed"
)

func main() {
	preset := flag.String("preset", "demo", "Built-in preset name or path to a YAML preset")
	shouldClean := flag.Bool("clean", false, "Delete existing domain data before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing to the database")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	opts, err := seed.LoadPreset(*preset)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	opts.DryRun = *dryRun
	log.Printf("Preset %s: %d companies x %d jobs, %d job seekers, %d OMILs, dry-run=%v\n",
		*preset, opts.Companies, opts.JobsPerCompany, opts.Seekers, opts.OMILs, opts.DryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, opts)

	if *shouldClean && !opts.DryRun {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d companies, %d jobs, %d job seekers, %d audit entries.",
		sum.Companies, sum.Jobs, sum.Seekers, sum.AuditLogs)
	log.Printf("📧 All demo users have the password: %s", seed.DemoPassword)
}
