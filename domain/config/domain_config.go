package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Event constraints
	MaxTitleLength       int
	MinTitleLength       int
	MaxDescriptionLength int
	MaxEventDuration     time.Duration

	// Team constraints
	MaxTeamNameLength int
	MinTeamNameLength int
	MaxMembersPerTeam int
	MaxTeamsPerUser   int

	// User constraints
	MaxUserNameLength int

	// Calendar query limits
	MaxRangeDays            int
	MaxConcurrentDayQueries int

	// Time constraints
	SessionTimeout    time.Duration
	ConnectionTimeout time.Duration

	// Validation settings
	AllowEmptyDescription bool
	RequireEventColor     bool

	// Feature flags
	EnableRealTimeSync bool
	EnableEventOutbox  bool
	EnableRateLimiting bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Event constraints
		MaxTitleLength:       200,
		MinTitleLength:       1,
		MaxDescriptionLength: 1000,
		MaxEventDuration:     0, // No cap by default

		// Team constraints
		MaxTeamNameLength: 100,
		MinTeamNameLength: 1,
		MaxMembersPerTeam: 500,
		MaxTeamsPerUser:   100,

		// User constraints
		MaxUserNameLength: 100,

		// Calendar query limits
		MaxRangeDays:            92,
		MaxConcurrentDayQueries: 8,

		// Time constraints
		SessionTimeout:    24 * time.Hour,
		ConnectionTimeout: 30 * time.Second,

		// Validation settings
		AllowEmptyDescription: true,
		RequireEventColor:     false,

		// Feature flags
		EnableRealTimeSync: true,
		EnableEventOutbox:  true,
		EnableRateLimiting: true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxMembersPerTeam = 250
	config.MaxTeamsPerUser = 50
	config.MaxEventDuration = 30 * 24 * time.Hour

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxMembersPerTeam = 1000
	config.MaxRangeDays = 366
	config.EnableRateLimiting = false

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxTitleLength < c.MinTitleLength {
		return fmt.Errorf("max title length %d below min %d", c.MaxTitleLength, c.MinTitleLength)
	}
	if c.MaxDescriptionLength < 0 {
		return fmt.Errorf("max description length must be non-negative")
	}
	if c.MaxRangeDays < 1 {
		return fmt.Errorf("max range days must be at least 1")
	}
	if c.MaxConcurrentDayQueries < 1 {
		return fmt.Errorf("max concurrent day queries must be at least 1")
	}
	return nil
}
