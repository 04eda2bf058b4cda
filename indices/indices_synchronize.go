package indices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"marketplace/bizerror"
	"marketplace/domain"
	"marketplace/domain/project"
	"marketplace/event"
	"marketplace/persistence"
	"marketplace/session"

	"github.com/sirupsen/logrus"
)

var (
	ProjectIndexEventHandlerName = "projectIndexer"

	indexRobot = &session.Session{
		Context:  context.Background(),
		Token:    "index-robot",
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Role:     domain.RoleAdmin,
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc        = IndicesFullSync
	ScheduleNewSyncRunFunc     = ScheduleNewSyncRun
	RedeliverPendingEventsFunc = RedeliverPendingEvents

	SyncBatchSize = 500
)

// ScheduleNewSyncRun starts a full sync in the background unless one is already running.
// It reports whether a new run was started.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.IsAdmin() {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	go func() {
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(context.Background()); err != nil {
			logrus.Warnf("indices full sync: %v", err)
		}
	}()
	return true, nil
}

func IndicesFullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	if err := EnsureProjectIndex(ctx); err != nil {
		return err
	}

	failed := 0
	for page := 1; ; page++ {
		projects, err := project.LoadProjectsFunc(ctx, page, SyncBatchSize)
		if err != nil {
			return fmt.Errorf("load projects (page = %d, pageSize = %d): %w", page, SyncBatchSize, err)
		}
		if len(projects) == 0 {
			break
		}

		if err := IndexProjects(ctx, projects); err != nil {
			var batchErr BatchActionError
			if !errors.As(err, &batchErr) {
				return err
			}
			failed += len(batchErr)
		}
		if len(projects) < SyncBatchSize {
			break
		}
	}

	logrus.Infof("indices full sync done, %d failures", failed)
	if failed > 0 {
		return fmt.Errorf("%d projects failed to index", failed)
	}
	return nil
}

// IndexProjectEventHandle re-indexes the project an event is about.
func IndexProjectEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != project.SourceTypeProject {
		return nil
	}

	p, err := project.DetailProjectFunc(e.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail project %d: %v", e.SourceId, err),
			HandlerIdentifier: ProjectIndexEventHandlerName,
		}
	}
	if err := IndexProjects(indexRobot.Context, []domain.Project{*p}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index project %d: %v", e.SourceId, err),
			HandlerIdentifier: ProjectIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ProjectIndexEventHandlerName}
}

// RedeliverPendingEvents hands unsynced events to the handlers again and returns how many got synced.
func RedeliverPendingEvents(ctx context.Context, limit int) (int, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	records, err := event.LoadUnsyncedFunc(db, limit)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for i := range records {
		results := event.InvokeHandlersFunc(&records[i])
		if !event.AllSucceeded(results) {
			if err := event.MarkAttemptFailedFunc(&records[i], db); err != nil {
				return delivered, err
			}
			continue
		}
		if err := event.MarkSyncedFunc(&records[i], db); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
