package service

import (
	"sort"
	"strings"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"

	"gorm.io/gorm"
)

// SearchService answers free-text workout searches, restricted to what
// the requesting user is allowed to see.
type SearchService struct {
	WorkoutRepo *repository.WorkoutRepository
	Capability  Capability
	DB          *gorm.DB
}

func NewSearchService(workoutRepo *repository.WorkoutRepository, capability Capability, db *gorm.DB) *SearchService {
	return &SearchService{
		WorkoutRepo: workoutRepo,
		Capability:  capability,
		DB:          db,
	}
}

// TokenizeTerms splits raw search input into terms: on commas when any
// comma is present, otherwise on whitespace. Blank input yields no terms,
// which means "match everything".
func TokenizeTerms(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var parts []string
	if strings.Contains(raw, ",") {
		parts = strings.Split(raw, ",")
	} else {
		parts = strings.Fields(raw)
	}
	var terms []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Search returns workouts matching any of the terms, visible to the user
// (public, or managed by them per the capability oracle), optionally
// restricted to a course. Results are deduplicated and ordered by how
// many terms they match, then by recency.
func (s *SearchService) Search(rawTerms string, userID uint, courseID *uint, scopeToOfferings bool) ([]model.Workout, error) {
	terms := TokenizeTerms(rawTerms)

	query := s.DB.Model(&model.Workout{}).Distinct("workouts.*")
	if courseID != nil {
		query = query.
			Joins("JOIN workout_offerings ON workout_offerings.workout_id = workouts.id AND workout_offerings.deleted_at IS NULL").
			Joins("JOIN course_offerings ON course_offerings.id = workout_offerings.course_offering_id").
			Where("course_offerings.course_id = ?", *courseID)
		if scopeToOfferings {
			query = query.Where("workout_offerings.published = ?", true)
		}
	}
	if len(terms) > 0 {
		clauses := make([]string, 0, len(terms))
		args := make([]interface{}, 0, 2*len(terms))
		for _, t := range terms {
			pattern := "%" + strings.ToLower(t) + "%"
			clauses = append(clauses, "(LOWER(workouts.name) LIKE ? OR LOWER(workouts.description) LIKE ?)")
			args = append(args, pattern, pattern)
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	var candidates []model.Workout
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(candidates))
	results := make([]model.Workout, 0, len(candidates))
	for _, w := range candidates {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		if !w.IsPublic {
			workout := w
			if !s.Capability.Check(userID, "manage", &workout) {
				continue
			}
		}
		results = append(results, w)
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := relevance(&results[i], terms), relevance(&results[j], terms)
		if ri != rj {
			return ri > rj
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}

// Gym returns the landing list of the newest public workouts.
func (s *SearchService) Gym(limit int) ([]model.Workout, error) {
	if limit <= 0 {
		limit = 12
	}
	return s.WorkoutRepo.RecentPublic(limit)
}

func relevance(w *model.Workout, terms []string) int {
	name := strings.ToLower(w.Name)
	description := strings.ToLower(w.Description)
	count := 0
	for _, t := range terms {
		t = strings.ToLower(t)
		if strings.Contains(name, t) || strings.Contains(description, t) {
			count++
		}
	}
	return count
}
