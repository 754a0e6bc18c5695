package usecase

import (
	"context"

	"backofficeWs/internal/modules/realtime/application/port"
	"backofficeWs/internal/modules/realtime/domain"
)

type BroadcastUseCase struct {
	broadcaster port.Broadcaster
}

func NewBroadcastUseCase(b port.Broadcaster) *BroadcastUseCase {
	return &BroadcastUseCase{broadcaster: b}
}

func (uc *BroadcastUseCase) Execute(ctx context.Context, msg *domain.Message) {
	if uc == nil || uc.broadcaster == nil || msg == nil {
		return
	}
	uc.broadcaster.Broadcast(ctx, msg)
}
