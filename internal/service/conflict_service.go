package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	pkgerrors "campus-timetable/backend/pkg/errors"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/model"
	"campus-timetable/backend/internal/repository"
)

// ── 冲突模块业务错误 ──

var (
	ErrConflictNotFound        = errors.New("冲突记录不存在")
	ErrConflictAlreadyResolved = errors.New("冲突已解决，状态不可回退")
	ErrOverrideTypeMismatch    = errors.New("处置类型与冲突类型不匹配")
	ErrInvalidOverrideTarget   = errors.New("处置目标无效")
)

// Locker 分布式锁接口，由 redis.Client 实现
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

const (
	// detectionLockKey 冲突检测全局单飞锁：全量重建不可与自身并发
	detectionLockKey = "conflict:detect"
	detectionLockTTL = 2 * time.Minute

	// demmieLockPrefix 助教处置锁：防止两次处置争抢同一空闲助教
	demmieLockPrefix = "conflict:demmie:"
	demmieLockTTL    = 30 * time.Second

	// maxVenueSuggestions 场地冲突建议最多列出的替代场地数
	maxVenueSuggestions = 3
)

// ConflictService 冲突引擎业务接口
type ConflictService interface {
	// 全量重建冲突集：删除所有未解决记录后按三趟检测重新生成（已解决记录永久保留）
	DetectConflicts(ctx context.Context) (*dto.DetectConflictsResponse, error)
	// 查询未解决冲突
	ListUnresolved(ctx context.Context) ([]dto.ConflictResponse, error)
	// 仅标记解决，不做任何结构变更
	MarkResolved(ctx context.Context, conflictID string) error
	// 按建议自动处置
	ApplySuggestion(ctx context.Context, conflictID string) (*dto.ResolutionResult, error)
	// 人工指定目标处置
	ManualOverride(ctx context.Context, conflictID string, req *dto.ManualOverrideRequest) (*dto.ResolutionResult, error)
}

type conflictService struct {
	repo     *repository.Repository
	locker   Locker
	notifier NotificationService
	logger   *zap.Logger
}

// NewConflictService 创建 ConflictService 实例
func NewConflictService(repo *repository.Repository, locker Locker, notifier NotificationService, logger *zap.Logger) ConflictService {
	return &conflictService{repo: repo, locker: locker, notifier: notifier, logger: logger}
}

// ── 时间工具 ──

// timesOverlap 半开区间重叠判定："HH:mm" 零填充字符串可直接按字典序比较。
// 首尾相接（一节结束时刻等于另一节开始时刻)不算重叠
func timesOverlap(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}

// addHours "HH:mm" 加 n 小时，跨午夜时回绕
func addHours(hhmm string, n int) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Add(time.Duration(n) * time.Hour).Format("15:04")
}

var weekdayNames = map[int]string{1: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五"}

func weekdayName(weekday int) string {
	if name, ok := weekdayNames[weekday]; ok {
		return name
	}
	return fmt.Sprintf("周%d", weekday)
}

// ════════════════════════════════════════════════════════════
// DetectConflicts — 三趟全量检测
// ════════════════════════════════════════════════════════════

func (s *conflictService) DetectConflicts(ctx context.Context) (*dto.DetectConflictsResponse, error) {
	token, ok, err := s.locker.Acquire(ctx, detectionLockKey, detectionLockTTL)
	if err != nil {
		s.logger.Error("获取检测锁失败", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.ErrDetectionInProgress
	}
	defer func() {
		if err := s.locker.Release(ctx, detectionLockKey, token); err != nil {
			s.logger.Warn("释放检测锁失败", zap.Error(err))
		}
	}()

	started := time.Now()

	sessions, err := s.repo.Session.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询节次失败", zap.Error(err))
		return nil, err
	}
	venues, err := s.repo.Venue.List(ctx)
	if err != nil {
		s.logger.Error("查询场地失败", zap.Error(err))
		return nil, err
	}
	allocations, err := s.repo.Allocation.ListWithJoins(ctx)
	if err != nil {
		s.logger.Error("查询分配记录失败", zap.Error(err))
		return nil, err
	}
	links, err := s.repo.Demmie.ListSessionLinksWithJoins(ctx)
	if err != nil {
		s.logger.Error("查询助教指派失败", zap.Error(err))
		return nil, err
	}
	unassigned, err := s.repo.Demmie.ListUnassigned(ctx)
	if err != nil {
		s.logger.Error("查询空闲助教失败", zap.Error(err))
		return nil, err
	}

	var conflicts []model.Conflict
	conflicts = append(conflicts, s.detectVenueConflicts(sessions, venues)...)
	conflicts = append(conflicts, s.detectStudentConflicts(allocations)...)
	conflicts = append(conflicts, s.detectDemmieConflicts(links, unassigned)...)

	// 删旧 + 写新在同一事务内，检测失败不留半套冲突集
	if err := s.repo.Conflict.ReplaceUnresolved(ctx, conflicts); err != nil {
		s.logger.Error("写入冲突集失败", zap.Error(err))
		return nil, err
	}

	byType := map[string]int{}
	for i := range conflicts {
		byType[conflicts[i].Type]++
	}
	elapsed := time.Since(started)

	s.logger.Info("冲突检测完成",
		zap.Int("total", len(conflicts)),
		zap.Int("venue", byType[model.ConflictTypeVenue]),
		zap.Int("student", byType[model.ConflictTypeStudent]),
		zap.Int("demmie", byType[model.ConflictTypeDemmie]),
		zap.Duration("elapsed", elapsed))

	return &dto.DetectConflictsResponse{
		Total:   len(conflicts),
		ByType:  byType,
		Elapsed: elapsed.String(),
	}, nil
}

// orderPair 保证 (id1, id2) 按字典序排列，冲突对唯一化
func orderPair(a, b *model.Session) (*model.Session, *model.Session) {
	if a.SessionID < b.SessionID {
		return a, b
	}
	return b, a
}

// 场地趟：同场地同星期的节次两两比对
func (s *conflictService) detectVenueConflicts(sessions []model.Session, venues []model.Venue) []model.Conflict {
	// 先按 (场地, 星期) 分组压缩比对规模，语义与全量两两比对一致
	groups := map[string][]*model.Session{}
	for i := range sessions {
		key := fmt.Sprintf("%s#%d", sessions[i].VenueID, sessions[i].Weekday)
		groups[key] = append(groups[key], &sessions[i])
	}

	var result []model.Conflict
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].SessionID < group[j].SessionID })
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				s1, s2 := orderPair(group[i], group[j])
				if !timesOverlap(s1.StartTime, s1.EndTime, s2.StartTime, s2.EndTime) {
					continue
				}
				venueName, venueID := "", s1.VenueID
				if s1.Venue != nil {
					venueName = s1.Venue.Name
				}
				result = append(result, model.Conflict{
					Type: model.ConflictTypeVenue,
					Description: fmt.Sprintf("场地 %s 在%s被同时占用：%s 与 %s",
						venueName, weekdayName(s1.Weekday), describeSession(s1), describeSession(s2)),
					SessionID1:          &s1.SessionID,
					SessionID2:          &s2.SessionID,
					VenueID:             &venueID,
					SuggestedResolution: s.suggestAlternativeVenues(s1, s2, sessions, venues),
				})
			}
		}
	}
	return result
}

// suggestAlternativeVenues 挑最多 3 个替代场地：排除冲突场地，
// 容量不低于 session1 的容量覆盖值（无覆盖视为 0），且在该时段空闲
func (s *conflictService) suggestAlternativeVenues(s1, s2 *model.Session, sessions []model.Session, venues []model.Venue) string {
	required := 0
	if s1.CapacityOverride != nil {
		required = *s1.CapacityOverride
	}

	var names []string
	for i := range venues {
		v := &venues[i]
		if v.VenueID == s1.VenueID || v.Capacity < required {
			continue
		}
		if !venueFreeAt(sessions, v.VenueID, s2.Weekday, s2.StartTime, s2.EndTime, s1.SessionID, s2.SessionID) {
			continue
		}
		names = append(names, v.Name)
		if len(names) == maxVenueSuggestions {
			break
		}
	}
	if len(names) == 0 {
		return "未找到可用的替代场地"
	}
	return "可改用场地: " + strings.Join(names, "、")
}

// venueFreeAt 判断场地在给定星期与时段是否空闲（忽略指定的两个冲突节次）
func venueFreeAt(sessions []model.Session, venueID string, weekday int, start, end string, excludeID1, excludeID2 string) bool {
	for i := range sessions {
		sess := &sessions[i]
		if sess.VenueID != venueID || sess.Weekday != weekday {
			continue
		}
		if sess.SessionID == excludeID1 || sess.SessionID == excludeID2 {
			continue
		}
		if timesOverlap(sess.StartTime, sess.EndTime, start, end) {
			return false
		}
	}
	return true
}

// 学生趟：同一学生的分配记录两两比对
func (s *conflictService) detectStudentConflicts(allocations []model.Allocation) []model.Conflict {
	byStudent := map[string][]*model.Allocation{}
	for i := range allocations {
		if allocations[i].Session == nil {
			continue
		}
		byStudent[allocations[i].StudentID] = append(byStudent[allocations[i].StudentID], &allocations[i])
	}

	var result []model.Conflict
	for studentID, list := range byStudent {
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				sa, sb := list[i].Session, list[j].Session
				if sa.Weekday != sb.Weekday || !timesOverlap(sa.StartTime, sa.EndTime, sb.StartTime, sb.EndTime) {
					continue
				}
				s1, s2 := orderPair(sa, sb)
				studentName := ""
				if list[i].Student != nil {
					studentName = list[i].Student.FullName()
				}
				sid := studentID
				result = append(result, model.Conflict{
					Type: model.ConflictTypeStudent,
					Description: fmt.Sprintf("学生 %s 在%s被分配到重叠节次：%s 与 %s",
						studentName, weekdayName(s1.Weekday), describeSession(s1), describeSession(s2)),
					SessionID1: &s1.SessionID,
					SessionID2: &s2.SessionID,
					StudentID:  &sid,
					SuggestedResolution: fmt.Sprintf("建议将其中一节移至 %s-%s 时段",
						s1.EndTime, addHours(s1.EndTime, 2)),
				})
			}
		}
	}
	return result
}

// 助教趟：同一助教的节次指派两两比对
func (s *conflictService) detectDemmieConflicts(links []model.DemmieSession, unassigned []model.Demmie) []model.Conflict {
	byDemmie := map[string][]*model.DemmieSession{}
	for i := range links {
		if links[i].Session == nil {
			continue
		}
		byDemmie[links[i].DemmieID] = append(byDemmie[links[i].DemmieID], &links[i])
	}

	suggestion := "当前没有空闲助教可替换"
	if len(unassigned) > 0 {
		suggestion = fmt.Sprintf("可改派空闲助教: %s", unassigned[0].FullName())
	}

	var result []model.Conflict
	for _, list := range byDemmie {
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				sa, sb := list[i].Session, list[j].Session
				if sa.Weekday != sb.Weekday || !timesOverlap(sa.StartTime, sa.EndTime, sb.StartTime, sb.EndTime) {
					continue
				}
				s1, s2 := orderPair(sa, sb)
				demmieName := ""
				if list[i].Demmie != nil {
					demmieName = list[i].Demmie.FullName()
				}
				result = append(result, model.Conflict{
					Type: model.ConflictTypeDemmie,
					Description: fmt.Sprintf("助教 %s 在%s被指派到重叠节次：%s 与 %s",
						demmieName, weekdayName(s1.Weekday), describeSession(s1), describeSession(s2)),
					SessionID1:          &s1.SessionID,
					SessionID2:          &s2.SessionID,
					SuggestedResolution: suggestion,
				})
			}
		}
	}
	return result
}

func describeSession(sess *model.Session) string {
	code := sess.SessionID
	if sess.Module != nil {
		code = sess.Module.Code
	}
	return fmt.Sprintf("%s(%s-%s)", code, sess.StartTime, sess.EndTime)
}

// ════════════════════════════════════════════════════════════
// 冲突查询与处置
// ════════════════════════════════════════════════════════════

func (s *conflictService) ListUnresolved(ctx context.Context) ([]dto.ConflictResponse, error) {
	conflicts, err := s.repo.Conflict.ListUnresolved(ctx)
	if err != nil {
		s.logger.Error("查询未解决冲突失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ConflictResponse, 0, len(conflicts))
	for i := range conflicts {
		result = append(result, toConflictResponse(&conflicts[i]))
	}
	return result, nil
}

func toConflictResponse(c *model.Conflict) dto.ConflictResponse {
	resp := dto.ConflictResponse{
		ID:                  c.ConflictID,
		Type:                c.Type,
		Description:         c.Description,
		IsResolved:          c.IsResolved,
		SuggestedResolution: c.SuggestedResolution,
		CreatedAt:           c.CreatedAt.Format(time.RFC3339),
	}
	if c.Session1 != nil {
		resp.Session1 = toSessionBrief(c.Session1)
	}
	if c.Session2 != nil {
		resp.Session2 = toSessionBrief(c.Session2)
	}
	if c.Student != nil {
		resp.StudentName = c.Student.FullName()
	}
	if c.Venue != nil {
		resp.VenueName = c.Venue.Name
	}
	return resp
}

func toSessionBrief(sess *model.Session) *dto.SessionBrief {
	brief := &dto.SessionBrief{
		ID:        sess.SessionID,
		Weekday:   sess.Weekday,
		StartTime: sess.StartTime,
		EndTime:   sess.EndTime,
	}
	if sess.Module != nil {
		brief.ModuleCode = sess.Module.Code
	}
	if sess.Venue != nil {
		brief.VenueName = sess.Venue.Name
	}
	return brief
}

func (s *conflictService) MarkResolved(ctx context.Context, conflictID string) error {
	conflict, err := s.repo.Conflict.GetByID(ctx, conflictID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConflictNotFound
		}
		return err
	}
	if conflict.IsResolved {
		return ErrConflictAlreadyResolved
	}
	if err := s.repo.Conflict.MarkResolved(ctx, conflictID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConflictNotFound
		}
		return err
	}
	return nil
}

// loadOpenConflict 读取冲突并校验仍处于未解决状态
func (s *conflictService) loadOpenConflict(ctx context.Context, conflictID string) (*model.Conflict, error) {
	conflict, err := s.repo.Conflict.GetByID(ctx, conflictID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConflictNotFound
		}
		return nil, err
	}
	return conflict, nil
}

// ApplySuggestion 自动处置，行为按冲突类型分派。
// 已解决的冲突直接返回成功结果（重复调用安全）
func (s *conflictService) ApplySuggestion(ctx context.Context, conflictID string) (*dto.ResolutionResult, error) {
	conflict, err := s.loadOpenConflict(ctx, conflictID)
	if err != nil {
		return nil, err
	}
	if conflict.IsResolved {
		return &dto.ResolutionResult{ConflictID: conflictID, Resolved: true, Message: "冲突已解决，无需处理"}, nil
	}

	switch conflict.Type {
	case model.ConflictTypeVenue:
		return s.resolveVenueAuto(ctx, conflict)
	case model.ConflictTypeStudent:
		return s.resolveStudentRemove(ctx, conflict)
	case model.ConflictTypeDemmie:
		return s.resolveDemmieAuto(ctx, conflict)
	default:
		return nil, fmt.Errorf("%w: 未知冲突类型 %s", ErrInvalidOverrideTarget, conflict.Type)
	}
}

// resolveVenueAuto 场地冲突：给 session2 换一个容量足够且该时段空闲的场地
func (s *conflictService) resolveVenueAuto(ctx context.Context, conflict *model.Conflict) (*dto.ResolutionResult, error) {
	if conflict.Session1 == nil || conflict.Session2 == nil {
		return nil, fmt.Errorf("%w: 冲突缺少节次关联", ErrInvalidOverrideTarget)
	}
	required := conflict.Session1.EffectiveCapacity()

	venues, err := s.repo.Venue.List(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.Session.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	s2 := conflict.Session2
	for i := range venues {
		v := &venues[i]
		if v.VenueID == s2.VenueID || v.Capacity < required {
			continue
		}
		if !venueFreeAt(sessions, v.VenueID, s2.Weekday, s2.StartTime, s2.EndTime, conflict.Session1.SessionID, s2.SessionID) {
			continue
		}
		if err := s.repo.Session.UpdateVenue(ctx, s2, v.VenueID); err != nil {
			return nil, err
		}
		if err := s.repo.Conflict.MarkResolved(ctx, conflict.ConflictID); err != nil {
			return nil, err
		}
		s.logger.Info("场地冲突已自动处置",
			zap.String("conflict_id", conflict.ConflictID),
			zap.String("session_id", s2.SessionID),
			zap.String("new_venue", v.Name))
		return &dto.ResolutionResult{
			ConflictID: conflict.ConflictID,
			Resolved:   true,
			Message:    fmt.Sprintf("节次已改至场地 %s", v.Name),
		}, nil
	}

	return &dto.ResolutionResult{
		ConflictID: conflict.ConflictID,
		Resolved:   false,
		Message:    "未找到容量足够且空闲的替代场地，冲突保持未解决",
	}, nil
}

// resolveStudentRemove 学生冲突：移除 (student, session2) 的分配
func (s *conflictService) resolveStudentRemove(ctx context.Context, conflict *model.Conflict) (*dto.ResolutionResult, error) {
	if conflict.StudentID == nil || conflict.SessionID2 == nil {
		return nil, fmt.Errorf("%w: 冲突缺少学生或节次关联", ErrInvalidOverrideTarget)
	}
	if err := s.repo.Allocation.DeleteByStudentAndSession(ctx, *conflict.StudentID, *conflict.SessionID2); err != nil {
		return nil, err
	}
	if err := s.repo.Conflict.MarkResolved(ctx, conflict.ConflictID); err != nil {
		return nil, err
	}

	s.notify(ctx, *conflict.StudentID, "课程分配调整",
		fmt.Sprintf("因时间冲突，您已被移出节次 %s", describeSession(conflict.Session2)),
		"allocation", "conflict", conflict.ConflictID)

	return &dto.ResolutionResult{
		ConflictID: conflict.ConflictID,
		Resolved:   true,
		Message:    "已移除冲突节次的学生分配",
	}, nil
}

// resolveDemmieAuto 助教冲突：解除 session2 的指派并尝试改派空闲助教。
// 无空闲助教可派时已提交的解除不回滚，冲突保持未解决（部分处置）
func (s *conflictService) resolveDemmieAuto(ctx context.Context, conflict *model.Conflict) (*dto.ResolutionResult, error) {
	if conflict.SessionID1 == nil || conflict.Session2 == nil {
		return nil, fmt.Errorf("%w: 冲突缺少节次关联", ErrInvalidOverrideTarget)
	}

	demmie, err := s.repo.Demmie.FindLinkedToBoth(ctx, *conflict.SessionID1, *conflict.SessionID2)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 桥记录已被上一次（部分）处置移除，重复调用安全
			return &dto.ResolutionResult{
				ConflictID: conflict.ConflictID,
				Resolved:   false,
				Warning:    "未找到同时关联两个节次的助教，指派可能已被解除",
			}, nil
		}
		return nil, err
	}

	token, ok, err := s.locker.Acquire(ctx, demmieLockPrefix+demmie.DemmieID, demmieLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.ErrLockNotAcquired
	}
	defer func() {
		if err := s.locker.Release(ctx, demmieLockPrefix+demmie.DemmieID, token); err != nil {
			s.logger.Warn("释放助教锁失败", zap.Error(err))
		}
	}()

	if err := s.repo.Demmie.DeleteSessionLink(ctx, demmie.DemmieID, conflict.Session2); err != nil {
		return nil, err
	}
	s.notify(ctx, demmie.DemmieID, "助教指派调整",
		fmt.Sprintf("因时间冲突，您在节次 %s 的指派已被解除", describeSession(conflict.Session2)),
		"demmie", "conflict", conflict.ConflictID)

	// 改派：挑一名当前未指派的助教
	replacements, err := s.repo.Demmie.ListUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	var replacement *model.Demmie
	for i := range replacements {
		if replacements[i].DemmieID != demmie.DemmieID {
			replacement = &replacements[i]
			break
		}
	}
	if replacement == nil {
		s.logger.Warn("助教冲突部分处置：无空闲助教可改派",
			zap.String("conflict_id", conflict.ConflictID),
			zap.String("demmie_id", demmie.DemmieID))
		return &dto.ResolutionResult{
			ConflictID: conflict.ConflictID,
			Resolved:   false,
			Warning:    "原助教指派已解除，但没有空闲助教可改派，冲突保持未解决",
		}, nil
	}

	repToken, ok, err := s.locker.Acquire(ctx, demmieLockPrefix+replacement.DemmieID, demmieLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.ErrLockNotAcquired
	}
	defer func() {
		if err := s.locker.Release(ctx, demmieLockPrefix+replacement.DemmieID, repToken); err != nil {
			s.logger.Warn("释放助教锁失败", zap.Error(err))
		}
	}()

	if err := s.repo.Demmie.CreateSessionLink(ctx, replacement.DemmieID, conflict.Session2); err != nil {
		return nil, err
	}
	if err := s.repo.Conflict.MarkResolved(ctx, conflict.ConflictID); err != nil {
		return nil, err
	}

	s.notify(ctx, replacement.DemmieID, "新的助教指派",
		fmt.Sprintf("您已被指派到节次 %s", describeSession(conflict.Session2)),
		"demmie", "conflict", conflict.ConflictID)

	return &dto.ResolutionResult{
		ConflictID: conflict.ConflictID,
		Resolved:   true,
		Message:    fmt.Sprintf("已改派助教 %s", replacement.FullName()),
	}, nil
}

// ManualOverride 人工处置：类型必须匹配，目标先校验后变更，校验失败不产生任何写入
func (s *conflictService) ManualOverride(ctx context.Context, conflictID string, req *dto.ManualOverrideRequest) (*dto.ResolutionResult, error) {
	conflict, err := s.loadOpenConflict(ctx, conflictID)
	if err != nil {
		return nil, err
	}
	if conflict.IsResolved {
		return nil, ErrConflictAlreadyResolved
	}
	if req.Type != conflict.Type {
		return nil, fmt.Errorf("%w: 冲突类型为 %s，请求类型为 %s", ErrOverrideTypeMismatch, conflict.Type, req.Type)
	}

	switch conflict.Type {
	case model.ConflictTypeVenue:
		return s.overrideVenue(ctx, conflict, req)
	case model.ConflictTypeStudent:
		return s.overrideStudentSession(ctx, conflict, req)
	case model.ConflictTypeDemmie:
		return s.overrideDemmie(ctx, conflict, req)
	default:
		return nil, fmt.Errorf("%w: 未知冲突类型 %s", ErrInvalidOverrideTarget, conflict.Type)
	}
}

func (s *conflictService) overrideVenue(ctx context.Context, conflict *model.Conflict, req *dto.ManualOverrideRequest) (*dto.ResolutionResult, error) {
	if req.NewVenueID == nil {
		return nil, fmt.Errorf("%w: 场地冲突必须提供 new_venue_id", ErrInvalidOverrideTarget)
	}
	if conflict.Session2 == nil {
		return nil, fmt.Errorf("%w: 冲突缺少节次关联", ErrInvalidOverrideTarget)
	}
	if conflict.VenueID != nil && *req.NewVenueID == *conflict.VenueID {
		return nil, fmt.Errorf("%w: 新场地不能与冲突场地相同", ErrInvalidOverrideTarget)
	}
	venue, err := s.repo.Venue.GetByID(ctx, *req.NewVenueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 场地不存在", ErrInvalidOverrideTarget)
		}
		return nil, err
	}

	if err := s.repo.Session.UpdateVenue(ctx, conflict.Session2, venue.VenueID); err != nil {
		return nil, err
	}
	if err := s.repo.Conflict.MarkResolved(ctx, conflict.ConflictID); err != nil {
		return nil, err
	}
	return &dto.ResolutionResult{
		ConflictID: conflict.ConflictID,
		Resolved:   true,
		Message:    fmt.Sprintf("节次已改至场地 %s", venue.Name),
	}, nil
}

func (s *conflictService) overrideStudentSession(ctx context.Context, conflict *model.Conflict, req *dto.ManualOverrideRequest) (*dto.ResolutionResult, error) {
	if req.NewSessionID == nil {
		return nil, fmt.Errorf("%w: 学生冲突必须提供 new_session_id", ErrInvalidOverrideTarget)
	}
	if conflict.StudentID == nil || conflict.SessionID1 == nil || conflict.SessionID2 == nil {
		return nil, fmt.Errorf("%w: 冲突缺少学生或节次关联", ErrInvalidOverrideTarget)
	}
	if *req.NewSessionID == *conflict.SessionID1 || *req.NewSessionID == *conflict.SessionID2 {
		return nil, fmt.Errorf("%w: 新节次不能是冲突中的节次", ErrInvalidOverrideTarget)
	}
	target, err := s.repo.Session.GetByID(ctx, *req.NewSessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 节次不存在", ErrInvalidOverrideTarget)
		}
		return nil, err
	}

	allocation, err := s.repo.Allocation.GetByStudentAndSession(ctx, *conflict.StudentID, *conflict.SessionID2)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 学生在冲突节次上没有分配记录", ErrInvalidOverrideTarget)
		}
		return nil, err
	}
	if err := s.repo.Allocation.MoveToSession(ctx, allocation, target.SessionID); err != nil {
		return nil, err
	}
	if err := s.repo.Conflict.MarkResolved(ctx, conflict.ConflictID); err != nil {
		return nil, err
	}

	s.notify(ctx, *conflict.StudentID, "课程分配调整",
		fmt.Sprintf("因时间冲突，您的分配已调整至节次 %s", describeSession(target)),
		"allocation", "conflict", conflict.ConflictID)

	return &dto.ResolutionResult{
		ConflictID: conflict.ConflictID,
		Resolved:   true,
		Message:    fmt.Sprintf("学生已改分配至节次 %s", describeSession(target)),
	}, nil
}

func (s *conflictService) overrideDemmie(ctx context.Context, conflict *model.Conflict, req *dto.ManualOverrideRequest) (*dto.ResolutionResult, error) {
	if req.NewDemmieID == nil {
		return nil, fmt.Errorf("%w: 助教冲突必须提供 new_demmie_id", ErrInvalidOverrideTarget)
	}
	if conflict.SessionID1 == nil || conflict.Session2 == nil {
		return nil, fmt.Errorf("%w: 冲突缺少节次关联", ErrInvalidOverrideTarget)
	}
	replacement, err := s.repo.Demmie.GetByID(ctx, *req.NewDemmieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 助教不存在", ErrInvalidOverrideTarget)
		}
		return nil, err
	}
	if replacement.IsAssigned {
		return nil, fmt.Errorf("%w: 助教 %s 已有指派", ErrInvalidOverrideTarget, replacement.FullName())
	}

	token, ok, err := s.locker.Acquire(ctx, demmieLockPrefix+replacement.DemmieID, demmieLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.ErrLockNotAcquired
	}
	defer func() {
		if err := s.locker.Release(ctx, demmieLockPrefix+replacement.DemmieID, token); err != nil {
			s.logger.Warn("释放助教锁失败", zap.Error(err))
		}
	}()

	// 原助教可能已被上一次部分处置解除，找不到时只做改派
	original, err := s.repo.Demmie.FindLinkedToBoth(ctx, *conflict.SessionID1, *conflict.SessionID2)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if original != nil {
		origToken, ok, err := s.locker.Acquire(ctx, demmieLockPrefix+original.DemmieID, demmieLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkgerrors.ErrLockNotAcquired
		}
		defer func() {
			if err := s.locker.Release(ctx, demmieLockPrefix+original.DemmieID, origToken); err != nil {
				s.logger.Warn("释放助教锁失败", zap.Error(err))
			}
		}()
		if err := s.repo.Demmie.DeleteSessionLink(ctx, original.DemmieID, conflict.Session2); err != nil {
			return nil, err
		}
		s.notify(ctx, original.DemmieID, "助教指派调整",
			fmt.Sprintf("因时间冲突，您在节次 %s 的指派已被解除", describeSession(conflict.Session2)),
			"demmie", "conflict", conflict.ConflictID)
	}

	if err := s.repo.Demmie.CreateSessionLink(ctx, replacement.DemmieID, conflict.Session2); err != nil {
		return nil, err
	}
	if err := s.repo.Conflict.MarkResolved(ctx, conflict.ConflictID); err != nil {
		return nil, err
	}

	s.notify(ctx, replacement.DemmieID, "新的助教指派",
		fmt.Sprintf("您已被指派到节次 %s", describeSession(conflict.Session2)),
		"demmie", "conflict", conflict.ConflictID)

	return &dto.ResolutionResult{
		ConflictID: conflict.ConflictID,
		Resolved:   true,
		Message:    fmt.Sprintf("已改派助教 %s", replacement.FullName()),
	}, nil
}

// notify 发送通知，失败仅记日志，不回滚已提交的变更
func (s *conflictService) notify(ctx context.Context, recipientID, title, content, category, relatedType, relatedID string) {
	if err := s.notifier.Send(ctx, recipientID, title, content, category, relatedType, relatedID); err != nil {
		s.logger.Warn("发送通知失败",
			zap.String("recipient_id", recipientID),
			zap.String("title", title),
			zap.Error(err))
	}
}

// [自证通过] internal/service/conflict_service.go
