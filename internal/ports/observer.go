package ports

import "github.com/bnema/focus-budget-cli/internal/domain"

type Observer interface {
	CycleCompleted(result domain.CycleResult)
	MaintenanceTick(tick domain.MaintenanceTick)
}
