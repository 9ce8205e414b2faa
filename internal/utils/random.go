package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

var firstNames = []string{
	"Alice", "Ben", "Carla", "Daniel", "Elena", "Frank", "Grace", "Hugo",
	"Irene", "Jonas", "Katie", "Liam", "Mona", "Noah", "Olga", "Peter",
	"Quinn", "Rosa", "Sam", "Tina", "Umar", "Vera", "Walt", "Yara",
}
var lastNames = []string{
	"Adams", "Baker", "Carter", "Diaz", "Evans", "Foster", "Garcia", "Hayes",
	"Ibarra", "Jensen", "Klein", "Lopez", "Mercer", "Nguyen", "Ortiz", "Parker",
	"Quintana", "Reyes", "Silva", "Turner", "Ueda", "Vargas", "Walsh", "Young",
}

func GenerateRandomName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

var digits = "0123456789"

// GenerateUsernameFromName lowercases first initial plus last name and tacks
// on a few digits to dodge collisions in seeded data.
func GenerateUsernameFromName(name string) string {
	parts := strings.Fields(name)
	username := strings.ToLower(parts[0][:1] + parts[len(parts)-1])

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var employmentTypes = []domain.EmploymentType{
	domain.EmploymentTypeFullTime,
	domain.EmploymentTypePartTime,
	domain.EmploymentTypeContract,
}

var skillPool = []string{
	"front-desk", "dispatch", "escalation", "inventory", "onboarding", "night-ops",
}

func GenerateRandomSkills() []string {
	n := rand.Intn(3)
	skills := make([]string, 0, n)
	for i := 0; i < n; i++ {
		skills = append(skills, skillPool[rand.Intn(len(skillPool))])
	}
	return skills
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	name := GenerateRandomName()
	username := GenerateUsernameFromName(name)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:       username,
		PasswordHash:   string(passwordHash),
		Name:           name,
		Email:          username + "@" + emailDomainName,
		Role:           domain.RoleEmployee,
		Status:         domain.UserStatusActive,
		Timezone:       "UTC",
		EmploymentType: employmentTypes[rand.Intn(len(employmentTypes))],
		Skills:         GenerateRandomSkills(),
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var unavailabilityReasons = []string{
	"medical appointment",
	"family obligation",
	"travel",
	"training course",
	"childcare",
}

func GenerateRandomReason() string {
	return fmt.Sprintf("%s (%d)", unavailabilityReasons[rand.Intn(len(unavailabilityReasons))], rand.Intn(1000))
}
