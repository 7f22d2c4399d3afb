package testdecl

import (
	"context"
	"fmt"
	"time"

	"github.com/veriflab/matchengine/pkg/logger"
)

// Run executes the complete declaration test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting declaration matching test",
		logger.String("baseURL", config.BaseURL),
		logger.String("eventID", config.EventID),
		logger.Int("rosterSize", config.RosterSize),
		logger.Int("declarations", config.NumDeclarations),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate and import the official roster
	roster := generateRoster(ctx, config, stats)
	if err := importRoster(ctx, config, roster); err != nil {
		return fmt.Errorf("roster import failed: %w", err)
	}
	logger.Get().Info(ctx, "roster imported", logger.Int("officials", len(roster)))

	// Step 3: Generate noisy declarations from the roster
	declarations := generateDeclarations(ctx, config, roster, stats)

	// Step 4: Submit declarations concurrently
	if err := submitDeclarations(ctx, config, declarations, stats); err != nil {
		return fmt.Errorf("declaration submission failed: %w", err)
	}

	// Step 5: Wait for the pipeline to drain
	logger.Get().Info(ctx, "waiting for declarations to be resolved")
	time.Sleep(ProcessingDelay)

	// Step 6: Retrieve sponsorships
	sponsorships, err := fetchSponsorships(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("sponsorship retrieval failed: %w", err)
	}

	// Step 7: Verify decisions against the generator's expectations
	if err := verifyResults(ctx, declarations, sponsorships); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, declarationsPerSecond float64

	if stats.DeclarationsSubmitted > 0 {
		successRate = float64(stats.DeclarationsAccepted) / float64(stats.DeclarationsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		declarationsPerSecond = float64(stats.DeclarationsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("rosterGenerated", stats.RosterGenerated),
		logger.Int("declarationsGenerated", stats.DeclarationsGenerated),
		logger.Int("declarationsSubmitted", stats.DeclarationsSubmitted),
		logger.Int("declarationsAccepted", stats.DeclarationsAccepted),
		logger.Int("declarationsDuplicate", stats.DeclarationsDuplicate),
		logger.Int("declarationsFailed", stats.DeclarationsFailed),
		logger.Int("sponsorshipsRetrieved", stats.SponsorshipsRetrieved),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("declarationsPerSecond", declarationsPerSecond))
}
