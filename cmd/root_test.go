package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"plan", "price", "optimize", "roi", "zcta", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "eddm-planner", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestPlanCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"address", "radius", "zips", "polygon", "delivery", "product", "industry", "xlsx"} {
		flag := planCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "plan should have --%s flag", flagName)
	}

	radius := planCmd.Flags().Lookup("radius")
	require.NotNil(t, radius)
	assert.Equal(t, "5", radius.DefValue)

	product := planCmd.Flags().Lookup("product")
	require.NotNil(t, product)
	assert.Equal(t, "turnkey", product.DefValue)
}

func TestOptimizeCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"zips", "budget", "delivery", "product"} {
		flag := optimizeCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "optimize should have --%s flag", flagName)
	}
}

func TestZCTACommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range zctaCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["download"])
	assert.True(t, names["load"])
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
