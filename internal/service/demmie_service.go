package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-timetable/backend/config"
	pkgerrors "campus-timetable/backend/pkg/errors"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/model"
	"campus-timetable/backend/internal/repository"
)

// ── 助教模块业务错误 ──

var (
	ErrDemmieNotFound      = errors.New("助教不存在")
	ErrDemmieAlreadyLinked = errors.New("助教已被指派到该节次")
	ErrDemmieNotLinked     = errors.New("助教未被指派到该节次")
	ErrDemmieEmailTaken    = errors.New("该邮箱已被其他助教使用")
)

// DemmieService 助教业务接口
type DemmieService interface {
	Create(ctx context.Context, req *dto.CreateDemmieRequest) (*dto.DemmieResponse, error)
	List(ctx context.Context) ([]dto.DemmieResponse, error)
	// Assign 指派助教到节次：桥记录创建与 is_assigned 维护在同一事务
	Assign(ctx context.Context, req *dto.AssignDemmieRequest) error
	Unassign(ctx context.Context, demmieID, sessionID string) error
	ListAssignments(ctx context.Context) ([]dto.DemmieAssignmentResponse, error)
	// LogHours 累计本周工时；超过周上限不拒绝，仅通知本人
	LogHours(ctx context.Context, demmieID string, req *dto.LogHoursRequest) (*dto.LogHoursResponse, error)
	// ResetWeeklyHours 周一定时任务入口：清零所有助教工时
	ResetWeeklyHours(ctx context.Context) (int64, error)
	// ListCandidates 查询可接手指定节次的空闲助教（可用时间需覆盖节次时段）
	ListCandidates(ctx context.Context, sessionID string) ([]dto.DemmieResponse, error)
	SaveAvailability(ctx context.Context, demmieID string, req *dto.AvailabilityRequest) error
}

type demmieService struct {
	repo     *repository.Repository
	locker   Locker
	notifier NotificationService
	cfg      *config.Config
	logger   *zap.Logger
}

// NewDemmieService 创建 DemmieService 实例
func NewDemmieService(repo *repository.Repository, locker Locker, notifier NotificationService, cfg *config.Config, logger *zap.Logger) DemmieService {
	return &demmieService{repo: repo, locker: locker, notifier: notifier, cfg: cfg, logger: logger}
}

func toDemmieResponse(d *model.Demmie) dto.DemmieResponse {
	return dto.DemmieResponse{
		ID:                  d.DemmieID,
		FullName:            d.FullName(),
		Email:               d.Email,
		WeeklyHourLimit:     d.WeeklyHourLimit,
		HoursWorkedThisWeek: d.HoursWorkedThisWeek,
		IsAssigned:          d.IsAssigned,
	}
}

func (s *demmieService) Create(ctx context.Context, req *dto.CreateDemmieRequest) (*dto.DemmieResponse, error) {
	limit := s.cfg.Allocation.DemmieWeeklyHourLimit
	if req.WeeklyHourLimit != nil {
		limit = *req.WeeklyHourLimit
	}
	demmie := &model.Demmie{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		WeeklyHourLimit: limit,
	}
	if err := s.repo.Demmie.Create(ctx, demmie); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDemmieEmailTaken
		}
		s.logger.Error("创建助教失败", zap.Error(err))
		return nil, err
	}
	resp := toDemmieResponse(demmie)
	return &resp, nil
}

func (s *demmieService) List(ctx context.Context) ([]dto.DemmieResponse, error) {
	demmies, err := s.repo.Demmie.List(ctx)
	if err != nil {
		s.logger.Error("查询助教失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.DemmieResponse, 0, len(demmies))
	for i := range demmies {
		result = append(result, toDemmieResponse(&demmies[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// 指派生命周期
// ════════════════════════════════════════════════════════════

func (s *demmieService) Assign(ctx context.Context, req *dto.AssignDemmieRequest) error {
	demmie, err := s.repo.Demmie.GetByID(ctx, req.DemmieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDemmieNotFound
		}
		return err
	}
	session, err := s.repo.Session.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	token, ok, err := s.locker.Acquire(ctx, demmieLockPrefix+demmie.DemmieID, demmieLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.ErrLockNotAcquired
	}
	defer func() {
		if err := s.locker.Release(ctx, demmieLockPrefix+demmie.DemmieID, token); err != nil {
			s.logger.Warn("释放助教锁失败", zap.Error(err))
		}
	}()

	exists, err := s.repo.Demmie.SessionLinkExists(ctx, demmie.DemmieID, session.SessionID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDemmieAlreadyLinked
	}

	if err := s.repo.Demmie.CreateSessionLink(ctx, demmie.DemmieID, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDemmieAlreadyLinked
		}
		s.logger.Error("创建助教指派失败", zap.Error(err))
		return err
	}

	s.notifyDemmie(ctx, demmie.DemmieID, "新的助教指派",
		fmt.Sprintf("您已被指派到节次 %s", describeSession(session)), session.SessionID)

	s.logger.Info("助教指派成功",
		zap.String("demmie_id", demmie.DemmieID),
		zap.String("session_id", session.SessionID))
	return nil
}

func (s *demmieService) Unassign(ctx context.Context, demmieID, sessionID string) error {
	demmie, err := s.repo.Demmie.GetByID(ctx, demmieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDemmieNotFound
		}
		return err
	}
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	token, ok, err := s.locker.Acquire(ctx, demmieLockPrefix+demmie.DemmieID, demmieLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.ErrLockNotAcquired
	}
	defer func() {
		if err := s.locker.Release(ctx, demmieLockPrefix+demmie.DemmieID, token); err != nil {
			s.logger.Warn("释放助教锁失败", zap.Error(err))
		}
	}()

	exists, err := s.repo.Demmie.SessionLinkExists(ctx, demmie.DemmieID, session.SessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrDemmieNotLinked
	}

	if err := s.repo.Demmie.DeleteSessionLink(ctx, demmie.DemmieID, session); err != nil {
		s.logger.Error("解除助教指派失败", zap.Error(err))
		return err
	}

	s.notifyDemmie(ctx, demmie.DemmieID, "助教指派解除",
		fmt.Sprintf("您在节次 %s 的指派已被解除", describeSession(session)), session.SessionID)
	return nil
}

func (s *demmieService) ListAssignments(ctx context.Context) ([]dto.DemmieAssignmentResponse, error) {
	links, err := s.repo.Demmie.ListSessionLinksWithJoins(ctx)
	if err != nil {
		s.logger.Error("查询助教指派失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.DemmieAssignmentResponse, 0, len(links))
	for i := range links {
		link := &links[i]
		item := dto.DemmieAssignmentResponse{DemmieID: link.DemmieID}
		if link.Demmie != nil {
			item.DemmieName = link.Demmie.FullName()
		}
		if link.Session != nil {
			item.Session = *toSessionBrief(link.Session)
		}
		result = append(result, item)
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// 工时
// ════════════════════════════════════════════════════════════

func (s *demmieService) LogHours(ctx context.Context, demmieID string, req *dto.LogHoursRequest) (*dto.LogHoursResponse, error) {
	demmie, err := s.repo.Demmie.GetByID(ctx, demmieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemmieNotFound
		}
		return nil, err
	}

	demmie.HoursWorkedThisWeek += req.Hours
	if err := s.repo.Demmie.UpdateHours(ctx, demmie); err != nil {
		s.logger.Error("写回助教工时失败", zap.Error(err))
		return nil, err
	}

	overLimit := demmie.HoursWorkedThisWeek > demmie.WeeklyHourLimit
	if overLimit {
		s.notifyDemmie(ctx, demmie.DemmieID, "周工时超限提醒",
			fmt.Sprintf("您本周已记录 %d 小时，超过上限 %d 小时",
				demmie.HoursWorkedThisWeek, demmie.WeeklyHourLimit), "")
		s.logger.Warn("助教周工时超限",
			zap.String("demmie_id", demmie.DemmieID),
			zap.Int("hours", demmie.HoursWorkedThisWeek),
			zap.Int("limit", demmie.WeeklyHourLimit))
	}

	return &dto.LogHoursResponse{
		HoursWorkedThisWeek: demmie.HoursWorkedThisWeek,
		WeeklyHourLimit:     demmie.WeeklyHourLimit,
		OverLimit:           overLimit,
	}, nil
}

func (s *demmieService) ResetWeeklyHours(ctx context.Context) (int64, error) {
	affected, err := s.repo.Demmie.ResetAllHours(ctx)
	if err != nil {
		s.logger.Error("清零周工时失败", zap.Error(err))
		return 0, err
	}
	s.logger.Info("周工时已清零", zap.Int64("affected", affected))
	return affected, nil
}

// ════════════════════════════════════════════════════════════
// 候选助教与可用时间
// ════════════════════════════════════════════════════════════

func (s *demmieService) ListCandidates(ctx context.Context, sessionID string) ([]dto.DemmieResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	unassigned, err := s.repo.Demmie.ListUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	availabilities, err := s.repo.Demmie.ListAllAvailabilities(ctx)
	if err != nil {
		return nil, err
	}
	byDemmie := map[string][]*model.DemmieAvailability{}
	for i := range availabilities {
		byDemmie[availabilities[i].DemmieID] = append(byDemmie[availabilities[i].DemmieID], &availabilities[i])
	}

	result := make([]dto.DemmieResponse, 0, len(unassigned))
	for i := range unassigned {
		d := &unassigned[i]
		// 未登记任何可用时间的助教视为随时可用
		windows := byDemmie[d.DemmieID]
		if len(windows) > 0 {
			covered := false
			for _, w := range windows {
				if w.Covers(session.Weekday, session.StartTime, session.EndTime) {
					covered = true
					break
				}
			}
			if !covered {
				continue
			}
		}
		result = append(result, toDemmieResponse(d))
	}
	return result, nil
}

func (s *demmieService) SaveAvailability(ctx context.Context, demmieID string, req *dto.AvailabilityRequest) error {
	if _, err := s.repo.Demmie.GetByID(ctx, demmieID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDemmieNotFound
		}
		return err
	}
	availability := &model.DemmieAvailability{
		DemmieID:    demmieID,
		Weekday:     req.Weekday,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable,
	}
	return s.repo.Demmie.SaveAvailability(ctx, availability)
}

func (s *demmieService) notifyDemmie(ctx context.Context, demmieID, title, content, sessionID string) {
	relatedType := ""
	if sessionID != "" {
		relatedType = "session"
	}
	if err := s.notifier.Send(ctx, demmieID, title, content, "demmie", relatedType, sessionID); err != nil {
		s.logger.Warn("发送助教通知失败", zap.String("demmie_id", demmieID), zap.Error(err))
	}
}

// [自证通过] internal/service/demmie_service.go
