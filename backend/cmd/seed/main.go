package main

import (
	"context"
	"flag"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"github.com/X1NY1NG/VRGame/backend/internal/heuristics"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/pkg/config"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

func main() {
	userID := flag.String("user-id", "demo-user", "User ID to seed a demo graph for")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Seeding demo graph...", zap.String("user_id", *userID))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatal("Failed to create Firestore client", zap.Error(err))
	}
	defer client.Close()

	store := kg.NewFirestoreStore(client)
	classifier := heuristics.NewRegexClassifier()

	edges := []kg.Edge{
		{
			Type:     kg.EdgeFamilyOf,
			FromName: "User", FromType: kg.NodePerson,
			ToName: "Emily", ToType: kg.NodePerson,
			Props:      map[string]any{"role": "daughter"},
			Confidence: 0.95,
		},
		{
			Type:     kg.EdgeLivesIn,
			FromName: "Emily", FromType: kg.NodePerson,
			ToName: "Toa Payoh", ToType: kg.NodePlace,
			Confidence: 0.9,
		},
		{
			Type:     kg.EdgeEnjoys,
			FromName: "User", FromType: kg.NodePerson,
			ToName: "Korean food", ToType: kg.NodeFood,
			Confidence: 0.85,
		},
		{
			Type:     kg.EdgeAvoidTopic,
			FromName: "User", FromType: kg.NodePerson,
			ToName: "hospital stays", ToType: kg.NodeTheme,
			Confidence: 0.8,
		},
	}

	mutation := kg.PlanMutation(*userID, edges, classifier.IsRoleNoun)
	if err := store.CommitGraph(ctx, *userID, mutation); err != nil {
		log.Fatal("Failed to commit demo graph", zap.Error(err))
	}

	log.Info("Demo graph seeded",
		zap.Int("nodes", len(mutation.Nodes)),
		zap.Int("edges", len(mutation.Edges)),
	)
}
