package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	pkgerrors "campus-timetable/backend/pkg/errors"

	"campus-timetable/backend/internal/dto"
)

// 标准 ICS 测试数据：周一与周三各一节，外加一条周六事件（应被跳过）
const testICSContent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Campus//Timetable//EN
BEGIN:VEVENT
SUMMARY:Lecture 1
DTSTART:20260302T090000
DTEND:20260302T110000
END:VEVENT
BEGIN:VEVENT
SUMMARY:Lecture 2
DTSTART:20260304T140000
DTEND:20260304T160000
END:VEVENT
BEGIN:VEVENT
SUMMARY:Weekend Event
DTSTART:20260307T100000
DTEND:20260307T120000
END:VEVENT
END:VCALENDAR`

func newSessionSvc(ts *testStore) SessionService {
	return NewSessionService(ts.repo(), zap.NewNop())
}

func TestImportICS(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	svc := newSessionSvc(ts)

	resp, err := svc.ImportICS(context.Background(), moduleID, venueIDs[0], "lecture",
		strings.NewReader(testICSContent))
	if err != nil {
		t.Fatalf("ImportICS 失败: %v", err)
	}
	if resp.Imported != 2 {
		t.Errorf("期望导入 2 节, 实际 %d", resp.Imported)
	}
	if resp.Skipped != 1 {
		t.Errorf("周六事件应被跳过, skipped=%d", resp.Skipped)
	}

	sessions, _ := ts.sessions.ListByModule(context.Background(), moduleID)
	weekdays := map[int]string{}
	for _, s := range sessions {
		weekdays[s.Weekday] = s.StartTime
	}
	if weekdays[1] != "09:00" || weekdays[3] != "14:00" {
		t.Errorf("导入的星期或时刻错误: %v", weekdays)
	}
}

func TestImportICS_BadFormat(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	svc := newSessionSvc(ts)

	_, err := svc.ImportICS(context.Background(), moduleID, venueIDs[0], "lecture",
		strings.NewReader("这不是 ICS"))
	if err == nil {
		t.Fatal("非法 ICS 内容应报错")
	}
}

func TestUpdateSessionVenue_OptimisticLock(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	session := mustCreateSession(t, ts, moduleID, venueIDs[0], 1, "09:00", "10:00")
	svc := newSessionSvc(ts)
	ctx := context.Background()

	// 版本匹配：成功且版本递增
	updated, err := svc.UpdateVenue(ctx, session.SessionID, &dto.UpdateSessionVenueRequest{
		VenueID: venueIDs[1],
		Version: 1,
	})
	if err != nil {
		t.Fatalf("UpdateVenue 失败: %v", err)
	}
	if updated.VenueID != venueIDs[1] || updated.Version != 2 {
		t.Errorf("期望场地更新且版本为 2, 实际 %+v", updated)
	}

	// 过期版本：被乐观锁拦截
	_, err = svc.UpdateVenue(ctx, session.SessionID, &dto.UpdateSessionVenueRequest{
		VenueID: venueIDs[0],
		Version: 1,
	})
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望 ErrOptimisticLock, 实际 %v", err)
	}
}

func TestCreateSession_InvalidTimeRange(t *testing.T) {
	ts := newTestStore()
	moduleID, venueIDs := seedTimetable(t, ts)
	svc := newSessionSvc(ts)

	_, err := svc.Create(context.Background(), &dto.CreateSessionRequest{
		ModuleID:  moduleID,
		VenueID:   venueIDs[0],
		Weekday:   1,
		StartTime: "11:00",
		EndTime:   "09:00",
		Type:      "lecture",
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("期望 ErrInvalidTimeRange, 实际 %v", err)
	}
}
