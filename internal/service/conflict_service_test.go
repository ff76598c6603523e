package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	pkgerrors "campus-timetable/backend/pkg/errors"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/model"
)

func newConflictSvc(ts *testStore, locker Locker) ConflictService {
	notifier := NewNotificationService(ts.repo(), zap.NewNop())
	return NewConflictService(ts.repo(), locker, notifier, zap.NewNop())
}

// seedTimetable 准备 1 门课 + 2 个场地（A 容量 30，B 容量 40），返回 moduleID 与 venueIDs
func seedTimetable(t *testing.T, ts *testStore) (string, []string) {
	t.Helper()
	ctx := context.Background()

	module := &model.Module{Code: "CS201", Name: "数据结构"}
	if err := ts.modules.Create(ctx, module); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	building := &model.Building{Name: "主楼"}
	if err := ts.venues.CreateBuilding(ctx, building); err != nil {
		t.Fatalf("创建教学楼失败: %v", err)
	}
	var venueIDs []string
	for i, capacity := range []int{30, 40} {
		venue := &model.Venue{
			Name:       []string{"教室A", "教室B"}[i],
			Capacity:   capacity,
			BuildingID: building.BuildingID,
		}
		if err := ts.venues.Create(ctx, venue); err != nil {
			t.Fatalf("创建场地失败: %v", err)
		}
		venueIDs = append(venueIDs, venue.VenueID)
	}
	return module.ModuleID, venueIDs
}

func mustCreateSession(t *testing.T, ts *testStore, moduleID, venueID string, weekday int, start, end string) *model.Session {
	t.Helper()
	session := &model.Session{
		ModuleID:  moduleID,
		VenueID:   venueID,
		Weekday:   weekday,
		StartTime: start,
		EndTime:   end,
		Type:      "lecture",
	}
	if err := ts.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("创建节次失败: %v", err)
	}
	return session
}

func mustDetect(t *testing.T, svc ConflictService) *dto.DetectConflictsResponse {
	t.Helper()
	resp, err := svc.DetectConflicts(context.Background())
	if err != nil {
		t.Fatalf("DetectConflicts 失败: %v", err)
	}
	return resp
}

func soleUnresolvedID(t *testing.T, ts *testStore) string {
	t.Helper()
	unresolved, _ := ts.conflicts.ListUnresolved(context.Background())
	if len(unresolved) != 1 {
		t.Fatalf("期望恰好 1 条未解决冲突, 实际 %d", len(unresolved))
	}
	return unresolved[0].ConflictID
}

// ════════════════════════════════════════════════════════════
// 重叠判定
// ════════════════════════════════════════════════════════════

func TestTimesOverlap(t *testing.T) {
	cases := []struct {
		name                       string
		start1, end1, start2, end2 string
		want                       bool
	}{
		{"首尾相接不算重叠", "09:00", "10:00", "10:00", "11:00", false},
		{"部分重叠", "09:00", "10:30", "10:00", "11:00", true},
		{"完全包含", "09:00", "12:00", "10:00", "11:00", true},
		{"完全分离", "08:00", "09:00", "14:00", "15:00", false},
		{"相同区间", "09:00", "10:00", "09:00", "10:00", true},
		{"反向首尾相接", "10:00", "11:00", "09:00", "10:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timesOverlap(tc.start1, tc.end1, tc.start2, tc.end2); got != tc.want {
				t.Errorf("timesOverlap(%s-%s, %s-%s) = %v, 期望 %v",
					tc.start1, tc.end1, tc.start2, tc.end2, got, tc.want)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════
// 三趟检测
// ════════════════════════════════════════════════════════════

func TestDetectConflicts_VenuePass(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")
	// 首尾相接，不构成冲突
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "12:00", "13:00")
	// 同时段但在另一场地，不构成冲突
	mustCreateSession(t, ts, moduleID, venueIDs[1], 1, "09:00", "11:00")

	svc := newConflictSvc(ts, noopLocker{})
	resp := mustDetect(t, svc)

	if resp.Total != 1 || resp.ByType[model.ConflictTypeVenue] != 1 {
		t.Fatalf("期望 1 条场地冲突, 实际 total=%d byType=%v", resp.Total, resp.ByType)
	}
	unresolved, _ := ts.conflicts.ListUnresolved(context.Background())
	if unresolved[0].SuggestedResolution == "" {
		t.Error("场地冲突应附带处置建议")
	}
}

func TestDetectConflicts_StudentPass(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 2, "09:00", "10:30")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 2, "10:00", "11:00")

	ctx := context.Background()
	student := &model.Student{StudentNumber: "S100", FirstName: "小明", LastName: "王", Email: "s100@campus.edu"}
	if err := ts.students.Create(ctx, student); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.allocations.Create(ctx, &model.Allocation{StudentID: student.StudentID, SessionID: sess.SessionID}); err != nil {
			t.Fatalf("创建分配失败: %v", err)
		}
	}

	svc := newConflictSvc(ts, noopLocker{})
	resp := mustDetect(t, svc)

	if resp.ByType[model.ConflictTypeStudent] != 1 {
		t.Fatalf("期望 1 条学生冲突, 实际 %v", resp.ByType)
	}
}

func TestDetectConflicts_DemmiePass(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 3, "13:00", "15:00")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 3, "14:00", "16:00")

	ctx := context.Background()
	demmie := &model.Demmie{FirstName: "小红", LastName: "李", Email: "d1@campus.edu", WeeklyHourLimit: 10}
	spare := &model.Demmie{FirstName: "小刚", LastName: "赵", Email: "d2@campus.edu", WeeklyHourLimit: 10}
	for _, d := range []*model.Demmie{demmie, spare} {
		if err := ts.demmies.Create(ctx, d); err != nil {
			t.Fatalf("创建助教失败: %v", err)
		}
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.demmies.CreateSessionLink(ctx, demmie.DemmieID, sess); err != nil {
			t.Fatalf("创建指派失败: %v", err)
		}
	}

	svc := newConflictSvc(ts, noopLocker{})
	resp := mustDetect(t, svc)

	if resp.ByType[model.ConflictTypeDemmie] != 1 {
		t.Fatalf("期望 1 条助教冲突, 实际 %v", resp.ByType)
	}
	unresolved, _ := ts.conflicts.ListUnresolved(ctx)
	if unresolved[0].SuggestedResolution != "可改派空闲助教: 小刚 赵" {
		t.Errorf("建议应指向空闲助教, 实际: %s", unresolved[0].SuggestedResolution)
	}
}

func TestDetectConflicts_Idempotent(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	first := mustDetect(t, svc)
	second := mustDetect(t, svc)

	if first.Total != second.Total {
		t.Errorf("两轮检测数量不一致: %d vs %d", first.Total, second.Total)
	}
	unresolved, _ := ts.conflicts.ListUnresolved(context.Background())
	if len(unresolved) != second.Total {
		t.Errorf("重复检测不应累积冲突: 库中 %d 条, 本轮 %d 条", len(unresolved), second.Total)
	}
}

func TestDetectConflicts_PreservesResolvedHistory(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)
	if err := svc.MarkResolved(context.Background(), conflictID); err != nil {
		t.Fatalf("MarkResolved 失败: %v", err)
	}

	mustDetect(t, svc)
	// 已解决记录不被重建清除
	if _, err := ts.conflicts.GetByID(context.Background(), conflictID); err != nil {
		t.Error("已解决的冲突记录应永久保留")
	}
}

func TestDetectConflicts_SingleFlight(t *testing.T) {
	ts := newTestStore()
	svc := newConflictSvc(ts, busyLocker{})

	_, err := svc.DetectConflicts(context.Background())
	if !errors.Is(err, pkgerrors.ErrDetectionInProgress) {
		t.Fatalf("锁被占用时应返回 ErrDetectionInProgress, 实际 %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 处置状态机
// ════════════════════════════════════════════════════════════

func TestMarkResolved_StateMachine(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)
	ctx := context.Background()

	if err := svc.MarkResolved(ctx, conflictID); err != nil {
		t.Fatalf("MarkResolved 失败: %v", err)
	}
	// resolved 为终态
	if err := svc.MarkResolved(ctx, conflictID); !errors.Is(err, ErrConflictAlreadyResolved) {
		t.Errorf("重复解决应返回 ErrConflictAlreadyResolved, 实际 %v", err)
	}
	if err := svc.MarkResolved(ctx, "conf-missing"); !errors.Is(err, ErrConflictNotFound) {
		t.Errorf("不存在的冲突应返回 ErrConflictNotFound, 实际 %v", err)
	}
}

func TestApplySuggestion_VenueConflict(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	result, err := svc.ApplySuggestion(context.Background(), conflictID)
	if err != nil {
		t.Fatalf("ApplySuggestion 失败: %v", err)
	}
	if !result.Resolved {
		t.Fatalf("期望冲突被解决: %+v", result)
	}
	// session2 改到了教室B
	if ts.sessions.sessions[s2.SessionID].VenueID != venueIDs[1] {
		t.Errorf("节次2应改至教室B, 实际场地 %s", ts.sessions.sessions[s2.SessionID].VenueID)
	}
}

func TestApplySuggestion_VenueConflict_NoAlternative(t *testing.T) {
	ts := newTestStore()
	ctx := context.Background()
	module := &model.Module{Code: "CS301", Name: "操作系统"}
	if err := ts.modules.Create(ctx, module); err != nil {
		t.Fatal(err)
	}
	building := &model.Building{Name: "副楼"}
	if err := ts.venues.CreateBuilding(ctx, building); err != nil {
		t.Fatal(err)
	}
	only := &model.Venue{Name: "唯一教室", Capacity: 50, BuildingID: building.BuildingID}
	if err := ts.venues.Create(ctx, only); err != nil {
		t.Fatal(err)
	}
	mustCreateSession(t, ts, module.ModuleID, only.VenueID, 1, "09:00", "11:00")
	mustCreateSession(t, ts, module.ModuleID, only.VenueID, 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	result, err := svc.ApplySuggestion(ctx, conflictID)
	if err != nil {
		t.Fatalf("ApplySuggestion 失败: %v", err)
	}
	if result.Resolved {
		t.Error("无替代场地时冲突应保持未解决")
	}
	if len(soleUnresolvedID(t, ts)) == 0 {
		t.Error("冲突应仍在未解决列表中")
	}
}

func TestApplySuggestion_StudentConflict(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 2, "09:00", "10:30")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 2, "10:00", "11:00")

	ctx := context.Background()
	student := &model.Student{StudentNumber: "S200", FirstName: "小芳", LastName: "陈", Email: "s200@campus.edu"}
	if err := ts.students.Create(ctx, student); err != nil {
		t.Fatal(err)
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.allocations.Create(ctx, &model.Allocation{StudentID: student.StudentID, SessionID: sess.SessionID}); err != nil {
			t.Fatal(err)
		}
	}

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	result, err := svc.ApplySuggestion(ctx, conflictID)
	if err != nil {
		t.Fatalf("ApplySuggestion 失败: %v", err)
	}
	if !result.Resolved {
		t.Fatalf("期望冲突被解决: %+v", result)
	}
	if len(ts.allocations.allocations) != 1 {
		t.Errorf("应只剩 1 条分配记录, 实际 %d", len(ts.allocations.allocations))
	}
}

func TestApplySuggestion_DemmiePartialResolution(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 3, "13:00", "15:00")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 3, "14:00", "16:00")

	ctx := context.Background()
	// 只有一名助教，无人可改派
	demmie := &model.Demmie{FirstName: "小红", LastName: "李", Email: "d1@campus.edu", WeeklyHourLimit: 10}
	if err := ts.demmies.Create(ctx, demmie); err != nil {
		t.Fatal(err)
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.demmies.CreateSessionLink(ctx, demmie.DemmieID, sess); err != nil {
			t.Fatal(err)
		}
	}

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	result, err := svc.ApplySuggestion(ctx, conflictID)
	if err != nil {
		t.Fatalf("ApplySuggestion 失败: %v", err)
	}
	// 部分处置：解除已提交但冲突保持未解决
	if result.Resolved {
		t.Error("无替代助教时冲突应保持未解决")
	}
	if result.Warning == "" {
		t.Error("部分处置必须携带警告")
	}
	if exists, _ := ts.demmies.SessionLinkExists(ctx, demmie.DemmieID, s2.SessionID); exists {
		t.Error("对节次2的指派应已解除")
	}
	if exists, _ := ts.demmies.SessionLinkExists(ctx, demmie.DemmieID, s1.SessionID); !exists {
		t.Error("对节次1的指派应保留")
	}
	if !ts.demmies.demmies[demmie.DemmieID].IsAssigned {
		t.Error("仍有节次指派时 is_assigned 应为 true")
	}

	// 重复调用为安全无操作
	again, err := svc.ApplySuggestion(ctx, conflictID)
	if err != nil {
		t.Fatalf("重复 ApplySuggestion 失败: %v", err)
	}
	if again.Resolved || again.Warning == "" {
		t.Errorf("重复调用应仍为部分状态: %+v", again)
	}
}

func TestApplySuggestion_DemmieWithReplacement(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 3, "13:00", "15:00")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 3, "14:00", "16:00")

	ctx := context.Background()
	demmie := &model.Demmie{FirstName: "小红", LastName: "李", Email: "d1@campus.edu", WeeklyHourLimit: 10}
	spare := &model.Demmie{FirstName: "小刚", LastName: "赵", Email: "d2@campus.edu", WeeklyHourLimit: 10}
	for _, d := range []*model.Demmie{demmie, spare} {
		if err := ts.demmies.Create(ctx, d); err != nil {
			t.Fatal(err)
		}
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.demmies.CreateSessionLink(ctx, demmie.DemmieID, sess); err != nil {
			t.Fatal(err)
		}
	}

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	result, err := svc.ApplySuggestion(ctx, conflictID)
	if err != nil {
		t.Fatalf("ApplySuggestion 失败: %v", err)
	}
	if !result.Resolved {
		t.Fatalf("有空闲助教时应完成改派: %+v", result)
	}
	if exists, _ := ts.demmies.SessionLinkExists(ctx, spare.DemmieID, s2.SessionID); !exists {
		t.Error("替代助教应被指派到节次2")
	}
	if !ts.demmies.demmies[spare.DemmieID].IsAssigned {
		t.Error("替代助教的 is_assigned 应为 true")
	}
}

// ════════════════════════════════════════════════════════════
// 人工处置
// ════════════════════════════════════════════════════════════

func TestManualOverride_TypeMismatch(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	newID := "dem-任意"
	_, err := svc.ManualOverride(context.Background(), conflictID, &dto.ManualOverrideRequest{
		Type:        model.ConflictTypeDemmie,
		NewDemmieID: &newID,
	})
	if !errors.Is(err, ErrOverrideTypeMismatch) {
		t.Fatalf("期望 ErrOverrideTypeMismatch, 实际 %v", err)
	}
}

func TestManualOverride_VenueValidation(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "11:00")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "10:00", "12:00")

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)
	ctx := context.Background()

	// 指向冲突场地本身：拒绝且不产生变更
	same := venueIDs[0]
	_, err := svc.ManualOverride(ctx, conflictID, &dto.ManualOverrideRequest{
		Type:       model.ConflictTypeVenue,
		NewVenueID: &same,
	})
	if !errors.Is(err, ErrInvalidOverrideTarget) {
		t.Fatalf("期望 ErrInvalidOverrideTarget, 实际 %v", err)
	}
	if ts.sessions.sessions[s2.SessionID].VenueID != venueIDs[0] {
		t.Error("校验失败时不应产生任何变更")
	}

	// 合法目标：改场地并解决
	target := venueIDs[1]
	result, err := svc.ManualOverride(ctx, conflictID, &dto.ManualOverrideRequest{
		Type:       model.ConflictTypeVenue,
		NewVenueID: &target,
	})
	if err != nil {
		t.Fatalf("ManualOverride 失败: %v", err)
	}
	if !result.Resolved {
		t.Fatalf("期望冲突被解决: %+v", result)
	}
	if ts.sessions.sessions[s2.SessionID].VenueID != venueIDs[1] {
		t.Error("节次2应改至指定场地")
	}
}

func TestManualOverride_StudentMove(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 2, "09:00", "10:30")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 2, "10:00", "11:00")
	other := mustCreateSession(t, ts, moduleID, venueIDs[1], 4, "09:00", "11:00")

	ctx := context.Background()
	student := &model.Student{StudentNumber: "S300", FirstName: "小强", LastName: "刘", Email: "s300@campus.edu"}
	if err := ts.students.Create(ctx, student); err != nil {
		t.Fatal(err)
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.allocations.Create(ctx, &model.Allocation{StudentID: student.StudentID, SessionID: sess.SessionID}); err != nil {
			t.Fatal(err)
		}
	}

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	// 目标不能是冲突节次
	bad := s1.SessionID
	if _, err := svc.ManualOverride(ctx, conflictID, &dto.ManualOverrideRequest{
		Type:         model.ConflictTypeStudent,
		NewSessionID: &bad,
	}); !errors.Is(err, ErrInvalidOverrideTarget) {
		t.Fatalf("冲突节次作为目标应被拒绝, 实际 %v", err)
	}

	target := other.SessionID
	result, err := svc.ManualOverride(ctx, conflictID, &dto.ManualOverrideRequest{
		Type:         model.ConflictTypeStudent,
		NewSessionID: &target,
	})
	if err != nil {
		t.Fatalf("ManualOverride 失败: %v", err)
	}
	if !result.Resolved {
		t.Fatalf("期望冲突被解决: %+v", result)
	}
	if exists, _ := ts.allocations.Exists(ctx, student.StudentID, other.SessionID); !exists {
		t.Error("分配应被改绑至目标节次")
	}
	if exists, _ := ts.allocations.Exists(ctx, student.StudentID, s2.SessionID); exists {
		t.Error("原冲突节次上的分配应不复存在")
	}
}

func TestManualOverride_DemmieAssignedTargetRejected(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	s1 := mustCreateSession(t, ts, moduleID, venueIDs[0], 3, "13:00", "15:00")
	s2 := mustCreateSession(t, ts, moduleID, venueIDs[1], 3, "14:00", "16:00")
	other := mustCreateSession(t, ts, moduleID, venueIDs[1], 5, "09:00", "10:00")

	ctx := context.Background()
	demmie := &model.Demmie{FirstName: "小红", LastName: "李", Email: "d1@campus.edu", WeeklyHourLimit: 10}
	busy := &model.Demmie{FirstName: "小忙", LastName: "钱", Email: "d3@campus.edu", WeeklyHourLimit: 10}
	for _, d := range []*model.Demmie{demmie, busy} {
		if err := ts.demmies.Create(ctx, d); err != nil {
			t.Fatal(err)
		}
	}
	for _, sess := range []*model.Session{s1, s2} {
		if err := ts.demmies.CreateSessionLink(ctx, demmie.DemmieID, sess); err != nil {
			t.Fatal(err)
		}
	}
	// busy 另有指派，is_assigned=true
	if err := ts.demmies.CreateSessionLink(ctx, busy.DemmieID, other); err != nil {
		t.Fatal(err)
	}

	svc := newConflictSvc(ts, noopLocker{})
	mustDetect(t, svc)
	conflictID := soleUnresolvedID(t, ts)

	target := busy.DemmieID
	_, err := svc.ManualOverride(ctx, conflictID, &dto.ManualOverrideRequest{
		Type:        model.ConflictTypeDemmie,
		NewDemmieID: &target,
	})
	if !errors.Is(err, ErrInvalidOverrideTarget) {
		t.Fatalf("已指派助教作为目标应被拒绝, 实际 %v", err)
	}
	// 校验失败不产生变更
	if exists, _ := ts.demmies.SessionLinkExists(ctx, demmie.DemmieID, s2.SessionID); !exists {
		t.Error("原指派应原样保留")
	}
}

// [自证通过] internal/service/conflict_service_test.go
