package repository

import (
	"workout_gym_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) Save(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// HasStaffEnrollment reports whether the user holds a staff or grader role
// in any course offering the workout is deployed to.
func (r *UserRepository) HasStaffEnrollment(userID, workoutID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CourseEnrollment{}).
		Joins("JOIN workout_offerings ON workout_offerings.course_offering_id = course_enrollments.course_offering_id").
		Where("course_enrollments.user_id = ? AND workout_offerings.workout_id = ?", userID, workoutID).
		Where("course_enrollments.role IN ?", []model.CourseRole{model.RoleStaff, model.RoleGrader}).
		Where("workout_offerings.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
