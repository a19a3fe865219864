package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

func strPtr(v string) *string { return &v }

func newStudent(id, studentID, username, name string) *models.User {
	return &models.User{ID: id, Username: username, Role: models.RoleStudent, StudentID: strPtr(studentID), Name: name}
}

// fakeUsers is an in-memory user store.
type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]*models.User
	created []*models.User
	fees    []*models.Fee
	err     error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindStudent(ctx context.Context, studentID string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Role == models.RoleStudent && u.StudentKey() == studentID })
}

func (f *fakeUsers) FindStaff(ctx context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Role.IsStaff() && u.Username == username })
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) ExistsByUsernameOrStudentID(ctx context.Context, username, studentID, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		if u.Username == username || (studentID != "" && u.StudentKey() == studentID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ListStudents(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.Role == models.RoleStudent {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentKey() < out[j].StudentKey() })
	return out, nil
}

func (f *fakeUsers) ListStudentNames(ctx context.Context, ids []string) ([]models.StudentName, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StudentName
	for _, u := range f.users {
		for _, id := range ids {
			if u.Role == models.RoleStudent && u.StudentKey() == id {
				out = append(out, models.StudentName{StudentID: id, Name: u.Name})
			}
		}
	}
	return out, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User, fee *models.Fee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	f.users[user.ID] = user
	f.created = append(f.created, user)
	if fee != nil {
		f.fees = append(f.fees, fee)
	}
	return nil
}

func (f *fakeUsers) UpdateStudent(ctx context.Context, user *models.User, previous *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

// fakeCourses serializes membership updates the way the row lock does.
type fakeCourses struct {
	mu      sync.Mutex
	courses map[string]*models.Course
	created []*models.Course
	err     error
}

func newFakeCourses(courses ...*models.Course) *fakeCourses {
	f := &fakeCourses{courses: map[string]*models.Course{}}
	for _, c := range courses {
		f.courses[c.CourseCode] = c
	}
	return f
}

func (f *fakeCourses) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneCourse(c), nil
}

func (f *fakeCourses) UpdateMembership(ctx context.Context, code string, mutate repository.MembershipMutator) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	locked := cloneCourse(c)
	if err := mutate(locked); err != nil {
		return nil, err
	}
	locked.Version++
	f.courses[code] = locked
	return cloneCourse(locked), nil
}

func (f *fakeCourses) ListCodesForStudent(ctx context.Context, studentID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var codes []string
	for code, c := range f.courses {
		if contains(c.EnrolledStudents, studentID) || contains(c.WaitlistStudents, studentID) {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (f *fakeCourses) Create(ctx context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.courses[course.CourseCode]; ok {
		return repository.ErrDuplicate
	}
	f.courses[course.CourseCode] = course
	f.created = append(f.created, course)
	return nil
}

func (f *fakeCourses) UpdateDetails(ctx context.Context, code, title string, maxSeats int, teacher string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if maxSeats < len(c.EnrolledStudents) {
		return nil, repository.ErrCapacityBelowEnrollment
	}
	c.Title, c.MaxSeats, c.TeacherUsername = title, maxSeats, teacher
	c.Version++
	return cloneCourse(c), nil
}

func (f *fakeCourses) ListAll(ctx context.Context) ([]models.CourseListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CourseListing
	for _, c := range f.courses {
		out = append(out, models.CourseListing{Course: *cloneCourse(c), TeacherName: "Unassigned Teacher"})
	}
	return out, nil
}

func (f *fakeCourses) ListByTeacher(ctx context.Context, teacher string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Course
	for _, c := range f.courses {
		if c.TeacherUsername == teacher {
			out = append(out, *cloneCourse(c))
		}
	}
	return out, nil
}

func cloneCourse(c *models.Course) *models.Course {
	clone := *c
	clone.EnrolledStudents = append(pq.StringArray{}, c.EnrolledStudents...)
	clone.WaitlistStudents = append(pq.StringArray{}, c.WaitlistStudents...)
	return &clone
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// fakeMarks keys marks by (kind, student, course, exam).
type fakeMarks struct {
	marks map[string]models.Mark
}

func newFakeMarks() *fakeMarks { return &fakeMarks{marks: map[string]models.Mark{}} }

func (f *fakeMarks) Upsert(ctx context.Context, m *models.Mark) (*models.Mark, error) {
	key := string(m.Kind) + "|" + m.StudentID + "|" + m.Course + "|" + m.ExamType
	if existing, ok := f.marks[key]; ok {
		m.ID = existing.ID
	} else {
		m.ID = key
	}
	f.marks[key] = *m
	return m, nil
}

func (f *fakeMarks) ListForAnalytics(ctx context.Context, studentID string) ([]models.Mark, error) {
	var out []models.Mark
	for _, m := range f.marks {
		if m.Kind == models.MarkAggregate || m.StudentID == studentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Course != out[j].Course {
			return out[i].Course < out[j].Course
		}
		return out[i].ExamType < out[j].ExamType
	})
	return out, nil
}

// fakeAttendance enforces the (student, course, day) unique key.
type fakeAttendance struct {
	mu      sync.Mutex
	records map[string]models.Attendance
}

func newFakeAttendance() *fakeAttendance { return &fakeAttendance{records: map[string]models.Attendance{}} }

func (f *fakeAttendance) InsertIfAbsent(ctx context.Context, r *models.Attendance) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.StudentID + "|" + r.Course + "|" + r.Date.UTC().Format("2006-01-02")
	if _, ok := f.records[key]; ok {
		return false, nil
	}
	r.ID = key
	f.records[key] = *r
	return true, nil
}

func (f *fakeAttendance) ListByStudentAndDay(ctx context.Context, studentID string, day time.Time) ([]models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attendance
	for _, r := range f.records {
		if r.StudentID == studentID && r.Date.UTC().Format("2006-01-02") == day.UTC().Format("2006-01-02") {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendance) SummaryByStudent(ctx context.Context, studentID string) ([]models.AttendanceCourseSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCourse := map[string]*models.AttendanceCourseSummary{}
	for _, r := range f.records {
		if r.StudentID != studentID {
			continue
		}
		s, ok := byCourse[r.Course]
		if !ok {
			s = &models.AttendanceCourseSummary{Course: r.Course}
			byCourse[r.Course] = s
		}
		s.TotalClasses++
		if r.Status == models.AttendancePresent {
			s.PresentCount++
		}
	}
	var out []models.AttendanceCourseSummary
	for _, s := range byCourse {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Course < out[j].Course })
	return out, nil
}

// fakeFees holds stored fees and a precomputed join result.
type fakeFees struct {
	rows    []models.StudentFeeRow
	fees    map[string]*models.Fee
	created []*models.Fee
	calls   int
}

func (f *fakeFees) ListStudentFees(ctx context.Context) ([]models.StudentFeeRow, error) {
	f.calls++
	return f.rows, nil
}

func (f *fakeFees) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	if fee, ok := f.fees[id]; ok {
		return fee, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFees) Create(ctx context.Context, fee *models.Fee) error {
	f.created = append(f.created, fee)
	return nil
}

func (f *fakeFees) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Fee, error) {
	fee, ok := f.fees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	fee.PaymentStatus = status
	return fee, nil
}

// fakeCascadeRunner records the steps it was handed.
type fakeCascadeRunner struct {
	steps []repository.CascadeStep
	err   error
}

func (f *fakeCascadeRunner) Run(ctx context.Context, steps []repository.CascadeStep) ([]repository.CascadeStepResult, error) {
	f.steps = steps
	if f.err != nil {
		return nil, f.err
	}
	results := make([]repository.CascadeStepResult, 0, len(steps))
	for _, s := range steps {
		results = append(results, repository.CascadeStepResult{Name: s.Name, Collection: s.Collection, Affected: 1})
	}
	return results, nil
}

// memoryCache is a CacheRepository backed by a map of JSON payloads.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string][]byte{}} }

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func newTestCache(repo *memoryCache) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}

type fakeTimetables struct {
	slots []models.Timetable
}

func (f *fakeTimetables) Create(ctx context.Context, slot *models.Timetable) error {
	slot.ID = "slot-" + slot.Course + "-" + slot.Day
	f.slots = append(f.slots, *slot)
	return nil
}

func (f *fakeTimetables) ListByTeacher(ctx context.Context, username string) ([]models.Timetable, error) {
	out := []models.Timetable{}
	for _, s := range f.slots {
		if s.TeacherUsername == username {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTimetables) ListByCourses(ctx context.Context, codes []string) ([]models.Timetable, error) {
	out := []models.Timetable{}
	for _, s := range f.slots {
		if contains(codes, s.Course) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeOrphans struct {
	// remaining dangling rows per collection; each sweep removes them all.
	remaining map[string]int64
	failing   map[string]error
}

func (f *fakeOrphans) DeleteOrphans(ctx context.Context, rule repository.OrphanRule) (int64, error) {
	if err := f.failing[rule.Collection]; err != nil {
		return 0, err
	}
	n := f.remaining[rule.Collection]
	delete(f.remaining, rule.Collection)
	return n, nil
}
