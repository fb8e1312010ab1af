package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"dockcall-backend/infra"
	"dockcall-backend/model"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

type Config struct {
	MongoDB struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongodb"`
}

func main() {
	configPaths := []string{
		"config.yml",
		"../config.yml",
		"../../config.yml",
	}

	var configData []byte
	var err error
	var usedPath string

	for _, path := range configPaths {
		configData, err = os.ReadFile(path)
		if err == nil {
			usedPath = path
			break
		}
	}

	if err != nil {
		log.Fatalf("❌ cannot find config.yml, tried: %v", configPaths)
	}

	fmt.Printf("✅ found config file: %s\n", usedPath)

	var cfg Config
	if err := yaml.Unmarshal(configData, &cfg); err != nil {
		log.Fatalf("❌ failed to parse config.yml: %v", err)
	}

	mongoConfig := infra.MongoConfig{
		URI:      cfg.MongoDB.URI,
		Database: cfg.MongoDB.Database,
	}
	mongoDB, err := infra.NewMongoDB(mongoConfig)
	if err != nil {
		log.Fatalf("❌ failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	ctx := context.Background()

	fmt.Println("🚀 creating panel indexes...")
	if err := mongoDB.EnsurePanelIndexes(ctx); err != nil {
		log.Fatalf("❌ failed to create indexes: %v", err)
	}
	fmt.Println("✅ indexes ready")

	if err := seedDemoDrivers(ctx, mongoDB); err != nil {
		log.Fatalf("❌ failed to seed demo drivers: %v", err)
	}
	fmt.Println("✅ initialization complete")
}

// seedDemoDrivers inserts a handful of drivers so a fresh install has
// something to show. Existing records are left untouched.
func seedDemoDrivers(ctx context.Context, mongoDB *infra.MongoDB) error {
	collection := mongoDB.GetCollection("drivers")

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("ℹ️  drivers collection already has %d records, skipping seed\n", count)
		return nil
	}

	now := time.Now()
	demoDrivers := []model.Driver{
		{
			FullName:           "João Silva",
			Phone:              "11987654321",
			VehiclePlate:       "ABC-1234",
			Transporter:        "Trans Rápido",
			Destination:        "CD Campinas",
			Dock:               "Doca 3",
			Password:           "123",
			Client:             "Mercado Central",
			ResponsibleSeller:  "Carlos Mendes",
			AvailabilityStatus: model.AvailabilityOnline,
			ServiceStatus:      model.ServiceStatusDisponivel,
		},
		{
			FullName:           "Maria Oliveira",
			Phone:              "11912345678",
			VehiclePlate:       "XYZ-9876",
			Transporter:        "LogSul",
			Destination:        "CD Sorocaba",
			Dock:               "Doca 1",
			AvailabilityStatus: model.AvailabilityOnline,
			ServiceStatus:      model.ServiceStatusAguardando,
		},
		{
			FullName:           "Pedro Santos",
			Phone:              "11955554444",
			VehiclePlate:       "DEF-5678",
			Transporter:        "Trans Rápido",
			AvailabilityStatus: model.AvailabilityOffline,
			ServiceStatus:      model.ServiceStatusDisponivel,
		},
	}

	docs := make([]interface{}, 0, len(demoDrivers))
	for i := range demoDrivers {
		driver := demoDrivers[i]
		// Spread creation instants so the millisecond-based ids stay unique.
		createdAt := now.Add(time.Duration(i) * time.Millisecond)
		driver.ID = model.NewDriverID(createdAt)
		driver.CreatedAt = createdAt
		driver.UpdatedAt = createdAt
		docs = append(docs, driver)
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return err
	}

	fmt.Printf("🌱 seeded %d demo drivers\n", len(docs))
	return nil
}
