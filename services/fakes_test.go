package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
	"github.com/tasknet/contest-system/storage"
)

// In-memory repository fakes. They mirror the Postgres behavior the services
// rely on: sentinel errors, conflict detection on unique pairs, and
// idempotent bulk inserts.

type pairKey struct{ a, b int }

type fakeContestRepo struct {
	contests map[int]*models.Contest
	nextID   int
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{contests: map[int]*models.Contest{}, nextID: 1}
}

func (r *fakeContestRepo) Create(_ context.Context, c *models.Contest) error {
	for _, existing := range r.contests {
		if existing.Slug == c.Slug {
			return repositories.ErrContestSlugConflict
		}
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	r.contests[c.ID] = &clone
	return nil
}

func (r *fakeContestRepo) GetByID(_ context.Context, id int) (*models.Contest, error) {
	c, ok := r.contests[id]
	if !ok {
		return nil, repositories.ErrContestNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeContestRepo) GetBySlug(_ context.Context, slug string) (*models.Contest, error) {
	for _, c := range r.contests {
		if c.Slug == slug {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repositories.ErrContestNotFound
}

func (r *fakeContestRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, c := range r.contests {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeContestRepo) List(_ context.Context, filter repositories.ListContestsFilter) ([]models.Contest, int, error) {
	var out []models.Contest
	for _, c := range r.contests {
		if filter.IsPublic != nil && c.IsPublic != *filter.IsPublic {
			continue
		}
		if filter.CreatedBy != nil && c.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeContestRepo) ListJoined(_ context.Context, _ int) ([]models.Contest, error) {
	return nil, nil
}

func (r *fakeContestRepo) Update(_ context.Context, c *models.Contest) error {
	if _, ok := r.contests[c.ID]; !ok {
		return repositories.ErrContestNotFound
	}
	clone := *c
	r.contests[c.ID] = &clone
	return nil
}

func (r *fakeContestRepo) UpdateProfileImgKey(_ context.Context, contestID int, key *string) error {
	c, ok := r.contests[contestID]
	if !ok {
		return repositories.ErrContestNotFound
	}
	c.ProfileImgKey = key
	return nil
}

func (r *fakeContestRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.contests[id]; !ok {
		return repositories.ErrContestNotFound
	}
	delete(r.contests, id)
	return nil
}

type fakeParticipantRepo struct {
	links  map[pairKey]*models.Participant // (contestID, userID)
	nextID int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{links: map[pairKey]*models.Participant{}, nextID: 1}
}

func (r *fakeParticipantRepo) Add(_ context.Context, p *models.Participant) error {
	key := pairKey{p.ContestID, p.UserID}
	if _, ok := r.links[key]; ok {
		return repositories.ErrParticipantConflict
	}
	p.ID = r.nextID
	r.nextID++
	p.JoinedAt = time.Now()
	clone := *p
	r.links[key] = &clone
	return nil
}

func (r *fakeParticipantRepo) Get(_ context.Context, contestID, userID int) (*models.Participant, error) {
	p, ok := r.links[pairKey{contestID, userID}]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeParticipantRepo) ListByContest(_ context.Context, contestID int) ([]models.Participant, error) {
	var out []models.Participant
	for key, p := range r.links {
		if key.a == contestID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) UpdateRole(_ context.Context, contestID, userID int, role models.ContestRole) error {
	p, ok := r.links[pairKey{contestID, userID}]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Role = role
	return nil
}

func (r *fakeParticipantRepo) Remove(_ context.Context, contestID, userID int) error {
	key := pairKey{contestID, userID}
	if _, ok := r.links[key]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.links, key)
	return nil
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, filter repositories.ListUsersFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *fakeUserRepo) Search(_ context.Context, term string, _, _ int) ([]models.User, int, error) {
	var out []models.User
	for _, u := range r.users {
		haystack := strings.ToLower(u.FirstName + " " + u.LastName + " " + u.Email)
		if strings.Contains(haystack, strings.ToLower(term)) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeTaskRepo struct {
	tasks  map[int]*models.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int]*models.Task{}, nextID: 1}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *models.Task) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	clone := *t
	r.tasks[t.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter repositories.ListTasksFilter) ([]models.Task, int, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if filter.ContestID != nil && t.ContestID != *filter.ContestID {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeTaskRepo) ListIDsByContest(_ context.Context, contestID int) ([]int, error) {
	var ids []int
	for _, t := range r.tasks {
		if t.ContestID == contestID {
			ids = append(ids, t.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *models.Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return repositories.ErrTaskNotFound
	}
	clone := *t
	r.tasks[t.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tasks[id]; !ok {
		return repositories.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeUserTaskRepo struct {
	assignments map[pairKey]*models.UserTask // (userID, taskID)
	tasks       *fakeTaskRepo
	nextID      int
}

func newFakeUserTaskRepo(tasks *fakeTaskRepo) *fakeUserTaskRepo {
	return &fakeUserTaskRepo{assignments: map[pairKey]*models.UserTask{}, tasks: tasks, nextID: 1}
}

func (r *fakeUserTaskRepo) Create(_ context.Context, ut *models.UserTask) error {
	key := pairKey{ut.UserID, ut.TaskID}
	if _, ok := r.assignments[key]; ok {
		return repositories.ErrUserTaskConflict
	}
	ut.ID = r.nextID
	r.nextID++
	ut.CreatedAt = time.Now()
	clone := *ut
	r.assignments[key] = &clone
	return nil
}

func (r *fakeUserTaskRepo) BulkAssign(_ context.Context, userID int, taskIDs []int, status models.UserTaskStatus) (int, error) {
	inserted := 0
	for _, taskID := range taskIDs {
		key := pairKey{userID, taskID}
		if _, ok := r.assignments[key]; ok {
			continue
		}
		r.assignments[key] = &models.UserTask{
			ID:        r.nextID,
			UserID:    userID,
			TaskID:    taskID,
			Status:    status,
			CreatedAt: time.Now(),
		}
		r.nextID++
		inserted++
	}
	return inserted, nil
}

func (r *fakeUserTaskRepo) GetByUserAndTask(_ context.Context, userID, taskID int) (*models.UserTask, error) {
	ut, ok := r.assignments[pairKey{userID, taskID}]
	if !ok {
		return nil, repositories.ErrUserTaskNotFound
	}
	clone := *ut
	if task, ok := r.tasks.tasks[taskID]; ok {
		clone.TaskTitle = task.Title
		clone.TaskPoints = task.Points
		clone.TaskDifficulty = task.Difficulty
		clone.ContestID = task.ContestID
	}
	return &clone, nil
}

func (r *fakeUserTaskRepo) ListByUserAndContest(_ context.Context, userID, contestID int) ([]models.UserTask, error) {
	var out []models.UserTask
	for key, ut := range r.assignments {
		if key.a != userID {
			continue
		}
		task, ok := r.tasks.tasks[ut.TaskID]
		if !ok || task.ContestID != contestID {
			continue
		}
		clone := *ut
		clone.TaskTitle = task.Title
		clone.TaskPoints = task.Points
		clone.ContestID = task.ContestID
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserTaskRepo) ListByUser(_ context.Context, userID, _, _ int) ([]models.UserTask, int, error) {
	var out []models.UserTask
	for key, ut := range r.assignments {
		if key.a == userID {
			out = append(out, *ut)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeUserTaskRepo) UpdateStatus(_ context.Context, userID, taskID int, update repositories.StatusUpdate) error {
	ut, ok := r.assignments[pairKey{userID, taskID}]
	if !ok {
		return repositories.ErrUserTaskNotFound
	}
	ut.Status = update.Status
	if update.Score != nil {
		ut.Score = *update.Score
	}
	if update.SubmittedAt != nil {
		ut.SubmittedAt = update.SubmittedAt
	}
	return nil
}

func (r *fakeUserTaskRepo) SaveSubmission(_ context.Context, userID, taskID int, answer string, score int, status models.UserTaskStatus, stampSubmittedAt bool) error {
	ut, ok := r.assignments[pairKey{userID, taskID}]
	if !ok {
		return repositories.ErrUserTaskNotFound
	}
	ut.UserAnswer = &answer
	ut.Score = score
	ut.Status = status
	if stampSubmittedAt {
		now := time.Now()
		ut.SubmittedAt = &now
	}
	return nil
}

func (r *fakeUserTaskRepo) Exists(_ context.Context, userID, taskID int) (bool, error) {
	_, ok := r.assignments[pairKey{userID, taskID}]
	return ok, nil
}

func (r *fakeUserTaskRepo) Delete(_ context.Context, userID, taskID int) error {
	key := pairKey{userID, taskID}
	if _, ok := r.assignments[key]; !ok {
		return repositories.ErrUserTaskNotFound
	}
	delete(r.assignments, key)
	return nil
}

type fakeUploader struct {
	uploads []string
	deletes []string
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, _ io.Reader) (*storage.UploadResult, error) {
	u.uploads = append(u.uploads, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.deletes = append(u.deletes, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

var (
	_ repositories.ContestRepository     = (*fakeContestRepo)(nil)
	_ repositories.ParticipantRepository = (*fakeParticipantRepo)(nil)
	_ repositories.UserRepository        = (*fakeUserRepo)(nil)
	_ repositories.TaskRepository        = (*fakeTaskRepo)(nil)
	_ repositories.UserTaskRepository    = (*fakeUserTaskRepo)(nil)
	_ storage.FileUploader               = (*fakeUploader)(nil)
)
