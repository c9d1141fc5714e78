package biz

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/build"
	"github.com/looplj/adminhub/internal/pkg/xtime"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/storage"
)

type SystemServiceParams struct {
	fx.In

	Store     *storage.Store
	Registry  *schema.Registry
	Evaluator *access.Evaluator
}

func NewSystemService(params SystemServiceParams) *SystemService {
	return &SystemService{
		AbstractService: &AbstractService{
			store:     params.Store,
			registry:  params.Registry,
			evaluator: params.Evaluator,
		},
	}
}

// SystemService reports build and content information for operators.
type SystemService struct {
	*AbstractService
}

// ListStatus is the content volume of one list. The created counts follow
// calendar periods, not rolling windows.
type ListStatus struct {
	Key              string `json:"key"`
	Label            string `json:"label"`
	Live             int    `json:"live"`
	Deleted          int    `json:"deleted"`
	CreatedToday     int    `json:"createdToday"`
	CreatedThisWeek  int    `json:"createdThisWeek"`
	CreatedThisMonth int    `json:"createdThisMonth"`
}

// SystemStatus is the operator view of the running instance.
type SystemStatus struct {
	Build build.Info   `json:"build"`
	Lists []ListStatus `json:"lists"`
}

// Status reports build info and per-list content counts.
func (s *SystemService) Status(ctx context.Context) (SystemStatus, error) {
	status := SystemStatus{
		Build: build.GetBuildInfo(),
		Lists: make([]ListStatus, 0, s.registry.Len()),
	}

	periods := xtime.GetCalendarPeriods(time.UTC)

	for _, list := range s.registry.Lists() {
		live, deleted, err := s.store.Counts(ctx, list.Key)
		if err != nil {
			return SystemStatus{}, err
		}

		createdToday, err := s.store.CountCreatedBetween(ctx, list.Key, periods.Today.Start, periods.Today.End)
		if err != nil {
			return SystemStatus{}, err
		}

		createdThisWeek, err := s.store.CountCreatedBetween(ctx, list.Key, periods.ThisWeek.Start, periods.ThisWeek.End)
		if err != nil {
			return SystemStatus{}, err
		}

		createdThisMonth, err := s.store.CountCreatedBetween(ctx, list.Key, periods.ThisMonth.Start, periods.ThisMonth.End)
		if err != nil {
			return SystemStatus{}, err
		}

		status.Lists = append(status.Lists, ListStatus{
			Key:              list.Key,
			Label:            list.Label,
			Live:             live,
			Deleted:          deleted,
			CreatedToday:     createdToday,
			CreatedThisWeek:  createdThisWeek,
			CreatedThisMonth: createdThisMonth,
		})
	}

	return status, nil
}
