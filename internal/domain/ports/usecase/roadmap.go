package usecase

// RoadmapDispatcher schedules the background run of a committed roadmap job.
// Dispatch must not block on the run itself.
type RoadmapDispatcher interface {
	Dispatch(jobID, ownerID, target string) error
}
