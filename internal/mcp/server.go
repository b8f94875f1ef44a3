// Package mcp exposes the risk engine over the Model Context Protocol,
// so agent tooling can run calculations through stdio.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/service"
)

const (
	serverName    = "aas-risk-engine"
	serverVersion = "1.0.0"
)

// Server wraps the risk engine behind MCP tools.
type Server struct {
	engine *service.Engine
	log    *logrus.Logger
	mcp    *mcp.Server
}

// CalculateInput is the payload of the calculate_risk tool.
type CalculateInput struct {
	Input domain.InputRecord `json:"input" jsonschema:"the full risk calculation input: regimen, labs, lifestyle, interventions, preset, plugins"`
}

// CalculateOutput is the result of the calculate_risk tool.
type CalculateOutput struct {
	Record *domain.RiskRecord `json:"record"`
}

// CompareInput is the payload of the compare_inputs tool.
type CompareInput struct {
	Base    domain.InputRecord `json:"base" jsonschema:"the scenario without the intervention"`
	Variant domain.InputRecord `json:"variant" jsonschema:"the same scenario with the intervention applied"`
}

// CompareOutput is the result of the compare_inputs tool.
type CompareOutput struct {
	Impact map[domain.Domain]domain.DomainImpact `json:"impact"`
}

// ListPresetsInput is the (empty) payload of the list_presets tool.
type ListPresetsInput struct{}

// ListPresetsOutput is the result of the list_presets tool.
type ListPresetsOutput struct {
	Presets []string `json:"presets"`
}

// NewServer creates an MCP server over the risk engine.
func NewServer(engine *service.Engine, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Server{
		engine: engine,
		log:    logger,
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "calculate_risk",
		Description: "Calculate per-domain lifetime health risks for an androgen regimen with labs, lifestyle, and interventions",
	}, s.handleCalculate)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "compare_inputs",
		Description: "Quantify the per-domain impact of an intervention by comparing two inputs",
	}, s.handleCompare)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_presets",
		Description: "List the available coefficient presets",
	}, s.handleListPresets)

	s.mcp = srv
	return s
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.WithFields(logrus.Fields{
		"server":  serverName,
		"version": serverVersion,
	}).Info("MCP server starting on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleCalculate(ctx context.Context, req *mcp.CallToolRequest, in CalculateInput) (*mcp.CallToolResult, CalculateOutput, error) {
	record, err := s.engine.Calculate(ctx, &in.Input)
	if err != nil {
		return nil, CalculateOutput{}, err
	}
	return nil, CalculateOutput{Record: record}, nil
}

func (s *Server) handleCompare(ctx context.Context, req *mcp.CallToolRequest, in CompareInput) (*mcp.CallToolResult, CompareOutput, error) {
	impact, err := s.engine.CompareImpact(ctx, &in.Base, &in.Variant)
	if err != nil {
		return nil, CompareOutput{}, err
	}
	return nil, CompareOutput{Impact: impact}, nil
}

func (s *Server) handleListPresets(ctx context.Context, req *mcp.CallToolRequest, in ListPresetsInput) (*mcp.CallToolResult, ListPresetsOutput, error) {
	names, err := s.engine.Presets()
	if err != nil {
		return nil, ListPresetsOutput{}, err
	}
	return nil, ListPresetsOutput{Presets: names}, nil
}
