package authz

import "jobsphere/internal/models"

// Flat set-membership checks over the user type claim; no role hierarchy.

func IsAdmin(userType string) bool {
	return userType == string(models.UserTypeAdmin)
}

func CanPostJobs(userType string) bool {
	return userType == string(models.UserTypeEmployer)
}

func IsKnown(userType string) bool {
	switch models.UserType(userType) {
	case models.UserTypeSeeker, models.UserTypeEmployer, models.UserTypeAdmin:
		return true
	}
	return false
}
