package service

import (
	"context"
	"strings"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

type toolService struct {
	toolRepo repository.ToolRepository
}

func NewToolService(toolRepo repository.ToolRepository) ToolService {
	return &toolService{toolRepo: toolRepo}
}

// AddTool registers a tool owned by ownerID. New tools start AVAILABLE.
func (s *toolService) AddTool(ctx context.Context, ownerID int64, tool *domain.Tool) error {
	tool.Name = strings.TrimSpace(tool.Name)
	if tool.Name == "" {
		return domain.ErrToolNameRequired
	}
	if tool.PricePerDayCents < 0 || tool.PricePerWeekCents < 0 || tool.PricePerMonthCents < 0 {
		return domain.ErrNegativePrice
	}
	tool.OwnerID = ownerID
	if tool.Status == "" {
		tool.Status = domain.ToolStatusAvailable
	}
	return s.toolRepo.Create(ctx, tool)
}

func (s *toolService) GetTool(ctx context.Context, id int64) (*domain.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}
