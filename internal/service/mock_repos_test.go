package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "campus-timetable/backend/pkg/errors"

	"campus-timetable/backend/internal/model"
	"campus-timetable/backend/internal/repository"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students    map[string]*model.Student
	order       []string // 保持插入顺序，分配策略依赖学生顺序
	enrollments map[string][]string // moduleID → studentIDs
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students:    make(map[string]*model.Student),
		enrollments: make(map[string][]string),
	}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = "stu-" + student.StudentNumber
	}
	for _, s := range m.students {
		if s.StudentNumber == student.StudentNumber || s.Email == student.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.students[student.StudentID] = student
	m.order = append(m.order, student.StudentID)
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, offset, limit int) ([]model.Student, int64, error) {
	var result []model.Student
	for _, id := range m.order {
		result = append(result, *m.students[id])
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockStudentRepo) ListByModule(_ context.Context, moduleID string) ([]model.Student, error) {
	var result []model.Student
	for _, sid := range m.enrollments[moduleID] {
		if s, ok := m.students[sid]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Enroll(_ context.Context, studentID, moduleID string) error {
	for _, sid := range m.enrollments[moduleID] {
		if sid == studentID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.enrollments[moduleID] = append(m.enrollments[moduleID], studentID)
	return nil
}

// ── Mock ModuleRepository ──

type mockModuleRepo struct {
	modules map[string]*model.Module
}

func newMockModuleRepo() *mockModuleRepo {
	return &mockModuleRepo{modules: make(map[string]*model.Module)}
}

func (m *mockModuleRepo) Create(_ context.Context, module *model.Module) error {
	if module.ModuleID == "" {
		module.ModuleID = "mod-" + module.Code
	}
	for _, existing := range m.modules {
		if existing.Code == module.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	m.modules[module.ModuleID] = module
	return nil
}

func (m *mockModuleRepo) GetByID(_ context.Context, id string) (*model.Module, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) GetByCode(_ context.Context, code string) (*model.Module, error) {
	for _, mod := range m.modules {
		if mod.Code == code {
			return mod, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) List(_ context.Context) ([]model.Module, error) {
	var result []model.Module
	for _, mod := range m.modules {
		result = append(result, *mod)
	}
	return result, nil
}

// ── Mock VenueRepository ──

type mockVenueRepo struct {
	venues    map[string]*model.Venue
	order     []string
	buildings map[string]*model.Building
}

func newMockVenueRepo() *mockVenueRepo {
	return &mockVenueRepo{
		venues:    make(map[string]*model.Venue),
		buildings: make(map[string]*model.Building),
	}
}

func (m *mockVenueRepo) Create(_ context.Context, venue *model.Venue) error {
	if venue.VenueID == "" {
		venue.VenueID = "ven-" + venue.Name
	}
	m.venues[venue.VenueID] = venue
	m.order = append(m.order, venue.VenueID)
	return nil
}

func (m *mockVenueRepo) GetByID(_ context.Context, id string) (*model.Venue, error) {
	if v, ok := m.venues[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVenueRepo) List(_ context.Context) ([]model.Venue, error) {
	var result []model.Venue
	for _, id := range m.order {
		result = append(result, *m.venues[id])
	}
	return result, nil
}

func (m *mockVenueRepo) ListByIDs(_ context.Context, ids []string) ([]model.Venue, error) {
	var result []model.Venue
	for _, id := range ids {
		if v, ok := m.venues[id]; ok {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (m *mockVenueRepo) CreateBuilding(_ context.Context, building *model.Building) error {
	if building.BuildingID == "" {
		building.BuildingID = "bld-" + building.Name
	}
	m.buildings[building.BuildingID] = building
	return nil
}

func (m *mockVenueRepo) ListBuildings(_ context.Context) ([]model.Building, error) {
	var result []model.Building
	for _, b := range m.buildings {
		result = append(result, *b)
	}
	return result, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.Session
	venueRef *mockVenueRepo
	modRef   *mockModuleRepo
	seq      int
}

func newMockSessionRepo(venues *mockVenueRepo, modules *mockModuleRepo) *mockSessionRepo {
	return &mockSessionRepo{
		sessions: make(map[string]*model.Session),
		venueRef: venues,
		modRef:   modules,
	}
}

// attach 填充关联指针，模拟 Preload
func (m *mockSessionRepo) attach(sess *model.Session) *model.Session {
	cp := *sess
	if v, ok := m.venueRef.venues[cp.VenueID]; ok {
		cp.Venue = v
	}
	if mod, ok := m.modRef.modules[cp.ModuleID]; ok {
		cp.Module = mod
	}
	return &cp
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.Session) error {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("sess-%02d", m.seq)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) BatchCreate(ctx context.Context, sessions []model.Session) error {
	for i := range sessions {
		if err := m.Create(ctx, &sessions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return m.attach(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) ListByModule(_ context.Context, moduleID string) ([]model.Session, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if s.ModuleID == moduleID {
			result = append(result, *m.attach(s))
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListAll(_ context.Context) ([]model.Session, error) {
	var result []model.Session
	for _, s := range m.sessions {
		result = append(result, *m.attach(s))
	}
	return result, nil
}

func (m *mockSessionRepo) UpdateVenue(_ context.Context, session *model.Session, venueID string) error {
	stored, ok := m.sessions[session.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != session.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.VenueID = venueID
	stored.Version++
	session.VenueID = venueID
	session.Version = stored.Version
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.sessions, id)
	return nil
}

// ── Mock AllocationRepository ──

type mockAllocationRepo struct {
	allocations []*model.Allocation
	stuRef      *mockStudentRepo
	sessRef     *mockSessionRepo
	seq         int
}

func newMockAllocationRepo(students *mockStudentRepo, sessions *mockSessionRepo) *mockAllocationRepo {
	return &mockAllocationRepo{stuRef: students, sessRef: sessions}
}

func (m *mockAllocationRepo) Create(_ context.Context, allocation *model.Allocation) error {
	for _, a := range m.allocations {
		if a.StudentID == allocation.StudentID && a.SessionID == allocation.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	allocation.AllocationID = fmt.Sprintf("alloc-%03d", m.seq)
	allocation.AssignedAt = time.Now()
	m.allocations = append(m.allocations, allocation)
	return nil
}

func (m *mockAllocationRepo) Exists(_ context.Context, studentID, sessionID string) (bool, error) {
	for _, a := range m.allocations {
		if a.StudentID == studentID && a.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAllocationRepo) ListWithJoins(_ context.Context) ([]model.Allocation, error) {
	var result []model.Allocation
	for _, a := range m.allocations {
		cp := *a
		if s, ok := m.stuRef.students[cp.StudentID]; ok {
			cp.Student = s
		}
		if sess, ok := m.sessRef.sessions[cp.SessionID]; ok {
			cp.Session = m.sessRef.attach(sess)
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockAllocationRepo) ListBySession(_ context.Context, sessionID string) ([]model.Allocation, error) {
	var result []model.Allocation
	for _, a := range m.allocations {
		if a.SessionID != sessionID {
			continue
		}
		cp := *a
		if s, ok := m.stuRef.students[cp.StudentID]; ok {
			cp.Student = s
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockAllocationRepo) GetByStudentAndSession(_ context.Context, studentID, sessionID string) (*model.Allocation, error) {
	for _, a := range m.allocations {
		if a.StudentID == studentID && a.SessionID == sessionID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAllocationRepo) DeleteByStudentAndSession(_ context.Context, studentID, sessionID string) error {
	for i, a := range m.allocations {
		if a.StudentID == studentID && a.SessionID == sessionID {
			m.allocations = append(m.allocations[:i], m.allocations[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockAllocationRepo) MoveToSession(_ context.Context, allocation *model.Allocation, newSessionID string) error {
	for _, a := range m.allocations {
		if a.AllocationID == allocation.AllocationID {
			a.SessionID = newSessionID
			allocation.SessionID = newSessionID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock DemmieRepository ──

type mockDemmieRepo struct {
	demmies        map[string]*model.Demmie
	order          []string
	sessionLinks   []*model.DemmieSession
	moduleLinks    []*model.DemmieModule
	availabilities []*model.DemmieAvailability
	sessRef        *mockSessionRepo
	seq            int
}

func newMockDemmieRepo(sessions *mockSessionRepo) *mockDemmieRepo {
	return &mockDemmieRepo{
		demmies: make(map[string]*model.Demmie),
		sessRef: sessions,
	}
}

func (m *mockDemmieRepo) Create(_ context.Context, demmie *model.Demmie) error {
	if demmie.DemmieID == "" {
		demmie.DemmieID = "dem-" + demmie.LastName
	}
	for _, d := range m.demmies {
		if d.Email == demmie.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.demmies[demmie.DemmieID] = demmie
	m.order = append(m.order, demmie.DemmieID)
	return nil
}

func (m *mockDemmieRepo) GetByID(_ context.Context, id string) (*model.Demmie, error) {
	if d, ok := m.demmies[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDemmieRepo) List(_ context.Context) ([]model.Demmie, error) {
	var result []model.Demmie
	for _, id := range m.order {
		result = append(result, *m.demmies[id])
	}
	return result, nil
}

func (m *mockDemmieRepo) ListUnassigned(_ context.Context) ([]model.Demmie, error) {
	var result []model.Demmie
	for _, id := range m.order {
		if !m.demmies[id].IsAssigned {
			result = append(result, *m.demmies[id])
		}
	}
	return result, nil
}

func (m *mockDemmieRepo) UpdateHours(_ context.Context, demmie *model.Demmie) error {
	stored, ok := m.demmies[demmie.DemmieID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.HoursWorkedThisWeek = demmie.HoursWorkedThisWeek
	stored.Version++
	return nil
}

func (m *mockDemmieRepo) ResetAllHours(_ context.Context) (int64, error) {
	var affected int64
	for _, d := range m.demmies {
		if d.HoursWorkedThisWeek > 0 {
			d.HoursWorkedThisWeek = 0
			d.Version++
			affected++
		}
	}
	return affected, nil
}

func (m *mockDemmieRepo) linkCount(demmieID string) int {
	count := 0
	for _, l := range m.sessionLinks {
		if l.DemmieID == demmieID {
			count++
		}
	}
	return count
}

func (m *mockDemmieRepo) CreateSessionLink(_ context.Context, demmieID string, session *model.Session) error {
	for _, l := range m.sessionLinks {
		if l.DemmieID == demmieID && l.SessionID == session.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	m.sessionLinks = append(m.sessionLinks, &model.DemmieSession{
		ID:        fmt.Sprintf("ds-%03d", m.seq),
		DemmieID:  demmieID,
		SessionID: session.SessionID,
	})

	hasModuleLink := false
	for _, l := range m.moduleLinks {
		if l.DemmieID == demmieID && l.ModuleID == session.ModuleID {
			hasModuleLink = true
			break
		}
	}
	if !hasModuleLink {
		m.moduleLinks = append(m.moduleLinks, &model.DemmieModule{
			DemmieID: demmieID,
			ModuleID: session.ModuleID,
		})
	}

	if d, ok := m.demmies[demmieID]; ok {
		d.IsAssigned = true
		now := time.Now()
		d.AssignedAt = &now
	}
	return nil
}

func (m *mockDemmieRepo) DeleteSessionLink(_ context.Context, demmieID string, session *model.Session) error {
	for i, l := range m.sessionLinks {
		if l.DemmieID == demmieID && l.SessionID == session.SessionID {
			m.sessionLinks = append(m.sessionLinks[:i], m.sessionLinks[i+1:]...)
			break
		}
	}

	// 同课程再无节次桥时清除课程桥
	stillInModule := false
	for _, l := range m.sessionLinks {
		if l.DemmieID != demmieID {
			continue
		}
		if s, ok := m.sessRef.sessions[l.SessionID]; ok && s.ModuleID == session.ModuleID {
			stillInModule = true
			break
		}
	}
	if !stillInModule {
		for i, l := range m.moduleLinks {
			if l.DemmieID == demmieID && l.ModuleID == session.ModuleID {
				m.moduleLinks = append(m.moduleLinks[:i], m.moduleLinks[i+1:]...)
				break
			}
		}
	}

	if d, ok := m.demmies[demmieID]; ok {
		if m.linkCount(demmieID) == 0 {
			d.IsAssigned = false
			d.AssignedAt = nil
		}
	}
	return nil
}

func (m *mockDemmieRepo) SessionLinkExists(_ context.Context, demmieID, sessionID string) (bool, error) {
	for _, l := range m.sessionLinks {
		if l.DemmieID == demmieID && l.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDemmieRepo) ListSessionLinksWithJoins(_ context.Context) ([]model.DemmieSession, error) {
	var result []model.DemmieSession
	for _, l := range m.sessionLinks {
		cp := *l
		if d, ok := m.demmies[cp.DemmieID]; ok {
			cp.Demmie = d
		}
		if s, ok := m.sessRef.sessions[cp.SessionID]; ok {
			cp.Session = m.sessRef.attach(s)
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockDemmieRepo) FindLinkedToBoth(_ context.Context, sessionID1, sessionID2 string) (*model.Demmie, error) {
	for _, id := range m.order {
		has1, has2 := false, false
		for _, l := range m.sessionLinks {
			if l.DemmieID != id {
				continue
			}
			if l.SessionID == sessionID1 {
				has1 = true
			}
			if l.SessionID == sessionID2 {
				has2 = true
			}
		}
		if has1 && has2 {
			return m.demmies[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDemmieRepo) ListAvailabilities(_ context.Context, demmieID string) ([]model.DemmieAvailability, error) {
	var result []model.DemmieAvailability
	for _, a := range m.availabilities {
		if a.DemmieID == demmieID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockDemmieRepo) ListAllAvailabilities(_ context.Context) ([]model.DemmieAvailability, error) {
	var result []model.DemmieAvailability
	for _, a := range m.availabilities {
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockDemmieRepo) SaveAvailability(_ context.Context, availability *model.DemmieAvailability) error {
	m.availabilities = append(m.availabilities, availability)
	return nil
}

// ── Mock ConflictRepository ──

type mockConflictRepo struct {
	conflicts map[string]*model.Conflict
	sessRef   *mockSessionRepo
	stuRef    *mockStudentRepo
	venueRef  *mockVenueRepo
	seq       int
}

func newMockConflictRepo(sessions *mockSessionRepo, students *mockStudentRepo, venues *mockVenueRepo) *mockConflictRepo {
	return &mockConflictRepo{
		conflicts: make(map[string]*model.Conflict),
		sessRef:   sessions,
		stuRef:    students,
		venueRef:  venues,
	}
}

func (m *mockConflictRepo) GetByID(_ context.Context, id string) (*model.Conflict, error) {
	c, ok := m.conflicts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	if cp.SessionID1 != nil {
		if s, ok := m.sessRef.sessions[*cp.SessionID1]; ok {
			cp.Session1 = m.sessRef.attach(s)
		}
	}
	if cp.SessionID2 != nil {
		if s, ok := m.sessRef.sessions[*cp.SessionID2]; ok {
			cp.Session2 = m.sessRef.attach(s)
		}
	}
	if cp.StudentID != nil {
		if s, ok := m.stuRef.students[*cp.StudentID]; ok {
			cp.Student = s
		}
	}
	if cp.VenueID != nil {
		if v, ok := m.venueRef.venues[*cp.VenueID]; ok {
			cp.Venue = v
		}
	}
	return &cp, nil
}

func (m *mockConflictRepo) ListUnresolved(_ context.Context) ([]model.Conflict, error) {
	var result []model.Conflict
	for _, c := range m.conflicts {
		if !c.IsResolved {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockConflictRepo) CountUnresolvedByType(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, c := range m.conflicts {
		if !c.IsResolved {
			counts[c.Type]++
		}
	}
	return counts, nil
}

func (m *mockConflictRepo) ReplaceUnresolved(_ context.Context, conflicts []model.Conflict) error {
	for id, c := range m.conflicts {
		if !c.IsResolved {
			delete(m.conflicts, id)
		}
	}
	for i := range conflicts {
		m.seq++
		cp := conflicts[i]
		cp.ConflictID = fmt.Sprintf("conf-%03d", m.seq)
		cp.CreatedAt = time.Now()
		m.conflicts[cp.ConflictID] = &cp
	}
	return nil
}

func (m *mockConflictRepo) MarkResolved(_ context.Context, id string) error {
	c, ok := m.conflicts[id]
	if !ok || c.IsResolved {
		return gorm.ErrRecordNotFound
	}
	c.IsResolved = true
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.seq++
	notification.NotificationID = fmt.Sprintf("ntf-%03d", m.seq)
	notification.CreatedAt = time.Now()
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByRecipient(_ context.Context, recipientID string, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			all = append(all, *n)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── no-op Locker ──

type noopLocker struct{}

func (noopLocker) Acquire(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	return "test-token", true, nil
}

func (noopLocker) Release(_ context.Context, _, _ string) error { return nil }

// busyLocker 模拟锁被占用
type busyLocker struct{}

func (busyLocker) Acquire(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	return "", false, nil
}

func (busyLocker) Release(_ context.Context, _, _ string) error { return nil }

// ── 测试数据装配 ──

// testStore 聚合全部 mock，保留具体类型方便测试内部检查
type testStore struct {
	students      *mockStudentRepo
	modules       *mockModuleRepo
	venues        *mockVenueRepo
	sessions      *mockSessionRepo
	allocations   *mockAllocationRepo
	demmies       *mockDemmieRepo
	conflicts     *mockConflictRepo
	notifications *mockNotificationRepo
}

func newTestStore() *testStore {
	students := newMockStudentRepo()
	modules := newMockModuleRepo()
	venues := newMockVenueRepo()
	sessions := newMockSessionRepo(venues, modules)
	return &testStore{
		students:      students,
		modules:       modules,
		venues:        venues,
		sessions:      sessions,
		allocations:   newMockAllocationRepo(students, sessions),
		demmies:       newMockDemmieRepo(sessions),
		conflicts:     newMockConflictRepo(sessions, students, venues),
		notifications: newMockNotificationRepo(),
	}
}

func (ts *testStore) repo() *repository.Repository {
	return &repository.Repository{
		Student:      ts.students,
		Module:       ts.modules,
		Venue:        ts.venues,
		Session:      ts.sessions,
		Allocation:   ts.allocations,
		Demmie:       ts.demmies,
		Conflict:     ts.conflicts,
		Notification: ts.notifications,
	}
}

// [自证通过] internal/service/mock_repos_test.go
