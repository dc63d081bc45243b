package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/program"
	"hyperkids/gym-app/internal/repository"
)

// --- in-memory fakes ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) AddAthleteToCoach(_ context.Context, coachID, athleteID primitive.ObjectID) error {
	coach, ok := r.users[coachID]
	if !ok {
		return repository.ErrNotFound
	}
	coach.AthleteIDs = append(coach.AthleteIDs, athleteID)
	return nil
}

func (r *fakeUserRepo) GetAthletesByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetCoachForAthlete(_ context.Context, athleteID, coachID primitive.ObjectID) error {
	athlete, ok := r.users[athleteID]
	if !ok {
		return repository.ErrNotFound
	}
	athlete.CoachID = &coachID
	return nil
}

func (r *fakeUserRepo) SetGroupForAthlete(_ context.Context, athleteID primitive.ObjectID, groupID *primitive.ObjectID) error {
	athlete, ok := r.users[athleteID]
	if !ok {
		return repository.ErrNotFound
	}
	athlete.GroupID = groupID
	return nil
}

type fakeGroupRepo struct {
	groups map[primitive.ObjectID]*domain.Group
}

func newFakeGroupRepo(groups ...*domain.Group) *fakeGroupRepo {
	r := &fakeGroupRepo{groups: make(map[primitive.ObjectID]*domain.Group)}
	for _, g := range groups {
		r.groups[g.ID] = g
	}
	return r
}

func (r *fakeGroupRepo) Create(_ context.Context, group *domain.Group) (primitive.ObjectID, error) {
	group.ID = primitive.NewObjectID()
	r.groups[group.ID] = group
	return group.ID, nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

func (r *fakeGroupRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Group, error) {
	var out []domain.Group
	for _, g := range r.groups {
		if g.CoachID == coachID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) AddAthlete(_ context.Context, groupID, athleteID primitive.ObjectID) error {
	g, ok := r.groups[groupID]
	if !ok {
		return repository.ErrNotFound
	}
	g.AthleteIDs = append(g.AthleteIDs, athleteID)
	return nil
}

func (r *fakeGroupRepo) RemoveAthlete(_ context.Context, groupID, athleteID primitive.ObjectID) error {
	g, ok := r.groups[groupID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, id := range g.AthleteIDs {
		if id == athleteID {
			g.AthleteIDs = append(g.AthleteIDs[:i], g.AthleteIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, groupID, _ primitive.ObjectID) error {
	delete(r.groups, groupID)
	return nil
}

type fakeProgramRepo struct {
	templates map[primitive.ObjectID]*domain.ProgramTemplate
}

func newFakeProgramRepo(templates ...*domain.ProgramTemplate) *fakeProgramRepo {
	r := &fakeProgramRepo{templates: make(map[primitive.ObjectID]*domain.ProgramTemplate)}
	for _, t := range templates {
		r.templates[t.ID] = t
	}
	return r
}

func (r *fakeProgramRepo) Create(_ context.Context, template *domain.ProgramTemplate) (primitive.ObjectID, error) {
	template.ID = primitive.NewObjectID()
	r.templates[template.ID] = template
	return template.ID, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *fakeProgramRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	var out []domain.ProgramTemplate
	for _, t := range r.templates {
		if t.CoachID == coachID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) Update(_ context.Context, template *domain.ProgramTemplate) error {
	if _, ok := r.templates[template.ID]; !ok {
		return repository.ErrNotFound
	}
	r.templates[template.ID] = template
	return nil
}

func (r *fakeProgramRepo) Delete(_ context.Context, id, _ primitive.ObjectID) error {
	if _, ok := r.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

type fakeAssignmentRepo struct {
	assignments map[primitive.ObjectID]*domain.ProgramAssignment
}

func newFakeAssignmentRepo(assignments ...*domain.ProgramAssignment) *fakeAssignmentRepo {
	r := &fakeAssignmentRepo{assignments: make(map[primitive.ObjectID]*domain.ProgramAssignment)}
	for _, a := range assignments {
		r.assignments[a.ID] = a
	}
	return r
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error) {
	assignment.ID = primitive.NewObjectID()
	r.assignments[assignment.ID] = assignment
	return assignment.ID, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	copied.TrainingDates = append([]string(nil), a.TrainingDates...)
	return &copied, nil
}

func (r *fakeAssignmentRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	var out []domain.ProgramAssignment
	for _, a := range r.assignments {
		if a.CoachID == coachID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	var out []domain.ProgramAssignment
	for _, a := range r.assignments {
		if a.AthleteID != nil && *a.AthleteID == athleteID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) GetByGroupIDs(_ context.Context, groupIDs []primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	var out []domain.ProgramAssignment
	for _, a := range r.assignments {
		for _, gid := range groupIDs {
			if a.GroupID != nil && *a.GroupID == gid {
				out = append(out, *a)
			}
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) CountByTemplateID(_ context.Context, templateID primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range r.assignments {
		if a.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

func (r *fakeAssignmentRepo) ListActive(_ context.Context) ([]domain.ProgramAssignment, error) {
	var out []domain.ProgramAssignment
	for _, a := range r.assignments {
		if a.Status == domain.AssignmentActive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) ReplaceTrainingDates(_ context.Context, id primitive.ObjectID, dates []string) error {
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.TrainingDates = append([]string(nil), dates...)
	return nil
}

func (r *fakeAssignmentRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

type fakeCompletionRepo struct {
	completions map[primitive.ObjectID]*domain.WorkoutCompletion
}

func newFakeCompletionRepo(completions ...*domain.WorkoutCompletion) *fakeCompletionRepo {
	r := &fakeCompletionRepo{completions: make(map[primitive.ObjectID]*domain.WorkoutCompletion)}
	for _, c := range completions {
		r.completions[c.ID] = c
	}
	return r
}

func (r *fakeCompletionRepo) Create(_ context.Context, completion *domain.WorkoutCompletion) (primitive.ObjectID, error) {
	for _, c := range r.completions {
		if c.AssignmentID == completion.AssignmentID && c.ScheduledDate == completion.ScheduledDate {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	completion.ID = primitive.NewObjectID()
	r.completions[completion.ID] = completion
	return completion.ID, nil
}

func (r *fakeCompletionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	c, ok := r.completions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *fakeCompletionRepo) GetByAssignmentID(_ context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	var out []domain.WorkoutCompletion
	for _, c := range r.completions {
		if c.AssignmentID == assignmentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCompletionRepo) GetByAssignmentAndDate(_ context.Context, assignmentID primitive.ObjectID, date string) (*domain.WorkoutCompletion, error) {
	for _, c := range r.completions {
		if c.AssignmentID == assignmentID && c.ScheduledDate == date {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCompletionRepo) OverrideStatus(_ context.Context, id primitive.ObjectID, status domain.CompletionStatus) error {
	c, ok := r.completions[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	return nil
}

// --- test fixtures ---

// twoWeekTemplate builds a 2-week template with 2 training days per week.
func twoWeekTemplate(coachID primitive.ObjectID) *domain.ProgramTemplate {
	week := func(n int) domain.TemplateWeek {
		return domain.TemplateWeek{
			ID:         primitive.NewObjectID(),
			WeekNumber: n,
			Days: []domain.TemplateDay{
				{ID: primitive.NewObjectID(), DayNumber: 1},
				{ID: primitive.NewObjectID(), DayNumber: 2},
			},
		}
	}
	return &domain.ProgramTemplate{
		ID:      primitive.NewObjectID(),
		CoachID: coachID,
		Name:    "GPP Block",
		Weeks:   []domain.TemplateWeek{week(1), week(2)},
	}
}

type fixture struct {
	svc       ScheduleService
	coach     *domain.User
	athlete   *domain.User
	template  *domain.ProgramTemplate
	users     *fakeUserRepo
	assigns   *fakeAssignmentRepo
	completes *fakeCompletionRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	coach := &domain.User{ID: primitive.NewObjectID(), Name: "Coach", Email: "coach@example.com", Role: domain.RoleCoach}
	athlete := &domain.User{ID: primitive.NewObjectID(), Name: "Athlete", Email: "athlete@example.com", Role: domain.RoleAthlete, CoachID: &coach.ID}

	users := newFakeUserRepo(coach, athlete)
	groups := newFakeGroupRepo()
	template := twoWeekTemplate(coach.ID)
	programs := newFakeProgramRepo(template)
	assigns := newFakeAssignmentRepo()
	completes := newFakeCompletionRepo()

	svc := NewScheduleService(users, groups, programs, assigns, completes, time.UTC)
	return &fixture{
		svc:       svc,
		coach:     coach,
		athlete:   athlete,
		template:  template,
		users:     users,
		assigns:   assigns,
		completes: completes,
	}
}

// Future dates so "today" never interferes.
var futureDates = []string{"2099-01-05", "2099-01-07", "2099-01-12", "2099-01-14"}

func TestAssignProgram(t *testing.T) {
	ctx := context.Background()

	t.Run("individual assignment with valid dates", func(t *testing.T) {
		f := newFixture(t)

		// Deliberately unsorted input.
		dates := []string{"2099-01-07", "2099-01-05", "2099-01-14", "2099-01-12"}
		a, err := f.svc.AssignProgram(ctx, f.coach.ID, f.template.ID, &f.athlete.ID, nil, dates)
		if err != nil {
			t.Fatalf("AssignProgram() error = %v", err)
		}

		if a.Type != domain.AssignmentIndividual {
			t.Errorf("Type = %q, want %q", a.Type, domain.AssignmentIndividual)
		}
		if a.Status != domain.AssignmentActive {
			t.Errorf("Status = %q, want %q", a.Status, domain.AssignmentActive)
		}
		if diff := cmp.Diff(futureDates, a.TrainingDates); diff != "" {
			t.Errorf("TrainingDates not normalized (-want +got):\n%s", diff)
		}
	})

	t.Run("athlete of another coach is rejected", func(t *testing.T) {
		f := newFixture(t)
		stranger := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleAthlete}
		f.users.users[stranger.ID] = stranger

		_, err := f.svc.AssignProgram(ctx, f.coach.ID, f.template.ID, &stranger.ID, nil, futureDates)
		if !errors.Is(err, ErrAthleteNotManaged) {
			t.Fatalf("AssignProgram() error = %v, want ErrAthleteNotManaged", err)
		}
	})

	t.Run("past date is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AssignProgram(ctx, f.coach.ID, f.template.ID, &f.athlete.ID, nil,
			[]string{"2000-01-03", "2099-01-05", "2099-01-07", "2099-01-12"})
		if !errors.Is(err, program.ErrPastDate) {
			t.Fatalf("AssignProgram() error = %v, want ErrPastDate", err)
		}
	})

	t.Run("both athlete and group is rejected", func(t *testing.T) {
		f := newFixture(t)
		groupID := primitive.NewObjectID()

		_, err := f.svc.AssignProgram(ctx, f.coach.ID, f.template.ID, &f.athlete.ID, &groupID, futureDates)
		if !errors.Is(err, ErrInvalidAssignmentTarget) {
			t.Fatalf("AssignProgram() error = %v, want ErrInvalidAssignmentTarget", err)
		}
	})
}

func TestEditTrainingDates(t *testing.T) {
	ctx := context.Background()

	assign := func(t *testing.T, f *fixture) *domain.ProgramAssignment {
		t.Helper()
		a, err := f.svc.AssignProgram(ctx, f.coach.ID, f.template.ID, &f.athlete.ID, nil, futureDates)
		if err != nil {
			t.Fatalf("AssignProgram() error = %v", err)
		}
		return a
	}

	complete := func(t *testing.T, f *fixture, a *domain.ProgramAssignment, date string) {
		t.Helper()
		_, err := f.completes.Create(ctx, &domain.WorkoutCompletion{
			AssignmentID:  a.ID,
			AthleteID:     f.athlete.ID,
			ScheduledDate: date,
			Status:        domain.CompletionDone,
		})
		if err != nil {
			t.Fatalf("seeding completion: %v", err)
		}
	}

	t.Run("removing a completed date is blocked", func(t *testing.T) {
		f := newFixture(t)
		a := assign(t, f)
		complete(t, f, a, "2099-01-05")

		_, err := f.svc.EditTrainingDates(ctx, f.coach.ID, a.ID,
			[]string{"2099-01-07", "2099-01-12", "2099-01-14"}, false)

		var pv *program.PolicyViolationError
		if !errors.As(err, &pv) {
			t.Fatalf("EditTrainingDates() error = %v, want PolicyViolationError", err)
		}
		if diff := cmp.Diff([]program.Date{"2099-01-05"}, pv.CompletedDates); diff != "" {
			t.Errorf("CompletedDates (-want +got):\n%s", diff)
		}

		// Nothing may have been persisted.
		stored, _ := f.assigns.GetByID(ctx, a.ID)
		if diff := cmp.Diff(futureDates, stored.TrainingDates); diff != "" {
			t.Errorf("schedule changed despite blocked edit (-want +got):\n%s", diff)
		}
	})

	t.Run("reassignment may drop completed dates", func(t *testing.T) {
		f := newFixture(t)
		a := assign(t, f)
		complete(t, f, a, "2099-01-05")

		want := []string{"2099-02-02", "2099-02-04", "2099-02-09"}
		updated, err := f.svc.EditTrainingDates(ctx, f.coach.ID, a.ID, want, true)
		if err != nil {
			t.Fatalf("EditTrainingDates() error = %v", err)
		}
		if diff := cmp.Diff(want, updated.TrainingDates); diff != "" {
			t.Errorf("TrainingDates (-want +got):\n%s", diff)
		}

		stored, _ := f.assigns.GetByID(ctx, a.ID)
		if diff := cmp.Diff(want, stored.TrainingDates); diff != "" {
			t.Errorf("persisted dates (-want +got):\n%s", diff)
		}
	})

	t.Run("moving uncompleted dates needs no reassignment", func(t *testing.T) {
		f := newFixture(t)
		a := assign(t, f)
		complete(t, f, a, "2099-01-05")

		// Keep the completed date, shuffle the rest.
		want := []string{"2099-01-05", "2099-01-08", "2099-01-13", "2099-01-15"}
		updated, err := f.svc.EditTrainingDates(ctx, f.coach.ID, a.ID, want, false)
		if err != nil {
			t.Fatalf("EditTrainingDates() error = %v", err)
		}
		if diff := cmp.Diff(want, updated.TrainingDates); diff != "" {
			t.Errorf("TrainingDates (-want +got):\n%s", diff)
		}
	})

	t.Run("new past date is rejected", func(t *testing.T) {
		f := newFixture(t)
		a := assign(t, f)

		_, err := f.svc.EditTrainingDates(ctx, f.coach.ID, a.ID,
			[]string{"2000-01-03", "2099-01-07", "2099-01-12", "2099-01-14"}, false)
		if !errors.Is(err, program.ErrPastDate) {
			t.Fatalf("EditTrainingDates() error = %v, want ErrPastDate", err)
		}
	})

	t.Run("foreign coach is denied", func(t *testing.T) {
		f := newFixture(t)
		a := assign(t, f)

		_, err := f.svc.EditTrainingDates(ctx, primitive.NewObjectID(), a.ID, futureDates, false)
		if !errors.Is(err, ErrAssignmentAccessDenied) {
			t.Fatalf("EditTrainingDates() error = %v, want ErrAssignmentAccessDenied", err)
		}
	})
}

func TestGetSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.AssignProgram(ctx, f.coach.ID, f.template.ID, &f.athlete.ID, nil, futureDates)
	if err != nil {
		t.Fatalf("AssignProgram() error = %v", err)
	}
	if _, err := f.completes.Create(ctx, &domain.WorkoutCompletion{
		AssignmentID:  a.ID,
		AthleteID:     f.athlete.ID,
		ScheduledDate: "2099-01-05",
		Status:        domain.CompletionDone,
	}); err != nil {
		t.Fatalf("seeding completion: %v", err)
	}

	view, err := f.svc.GetSchedule(ctx, f.athlete, a.ID)
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}

	if len(view.Weeks) != 2 {
		t.Errorf("len(Weeks) = %d, want 2", len(view.Weeks))
	}
	want := []program.ScheduledDay{
		{Date: "2099-01-05", Status: program.StatusCompleted},
		{Date: "2099-01-07", Status: program.StatusScheduled},
		{Date: "2099-01-12", Status: program.StatusScheduled},
		{Date: "2099-01-14", Status: program.StatusScheduled},
	}
	if diff := cmp.Diff(want, view.Days); diff != "" {
		t.Errorf("Days (-want +got):\n%s", diff)
	}

	stranger := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleAthlete}
	if _, err := f.svc.GetSchedule(ctx, stranger, a.ID); !errors.Is(err, ErrAssignmentAccessDenied) {
		t.Errorf("GetSchedule() by stranger error = %v, want ErrAssignmentAccessDenied", err)
	}
}

func TestRecordCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	completionSvc := NewCompletionService(f.assigns, f.completes, time.UTC)

	// Dates in the past so recording is allowed.
	a := &domain.ProgramAssignment{
		ID:            primitive.NewObjectID(),
		TemplateID:    f.template.ID,
		CoachID:       f.coach.ID,
		Type:          domain.AssignmentIndividual,
		AthleteID:     &f.athlete.ID,
		TrainingDates: []string{"2024-03-04", "2024-03-06"},
		Status:        domain.AssignmentActive,
	}
	f.assigns.assignments[a.ID] = a

	c, err := completionSvc.RecordCompletion(ctx, f.athlete, a.ID, "2024-03-04", domain.CompletionDone, "felt strong")
	if err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}
	if c.Status != domain.CompletionDone || c.ScheduledDate != "2024-03-04" {
		t.Errorf("unexpected record: %+v", c)
	}

	t.Run("double recording conflicts", func(t *testing.T) {
		_, err := completionSvc.RecordCompletion(ctx, f.athlete, a.ID, "2024-03-04", domain.CompletionMissed, "")
		if !errors.Is(err, ErrCompletionExists) {
			t.Errorf("RecordCompletion() error = %v, want ErrCompletionExists", err)
		}
	})

	t.Run("unscheduled date is rejected", func(t *testing.T) {
		_, err := completionSvc.RecordCompletion(ctx, f.athlete, a.ID, "2024-03-05", domain.CompletionDone, "")
		if !errors.Is(err, ErrDateNotScheduled) {
			t.Errorf("RecordCompletion() error = %v, want ErrDateNotScheduled", err)
		}
	})

	t.Run("future date is rejected", func(t *testing.T) {
		f.assigns.assignments[a.ID].TrainingDates = append(a.TrainingDates, "2099-03-06")
		_, err := completionSvc.RecordCompletion(ctx, f.athlete, a.ID, "2099-03-06", domain.CompletionDone, "")
		if !errors.Is(err, ErrDateInFuture) {
			t.Errorf("RecordCompletion() error = %v, want ErrDateInFuture", err)
		}
	})
}
