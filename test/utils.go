package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"styleforecastapi/models"
	"styleforecastapi/services"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewRefString(data string) *string {
	return &data
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &models.UserAccount{
		FirstName: "Alex",
		LastName:  "Style",
		Email:     "email@example.com",
		Password:  string(hashed),
		LastIp:    "123.122.122.122",
	}
	db.Create(&user)
	return user
}

func FakeUserV2(db *gorm.DB, firstName string, email string) *models.UserAccount {
	if email == "" {
		email = "email@example.com"
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &models.UserAccount{
		FirstName: firstName,
		Email:     email,
		Password:  string(hashed),
		LastIp:    "123.122.122.122",
	}
	db.Create(&user)
	return user
}

// FakeWardrobe seeds a minimal generatable closet: clean top, bottom, shoes
// in the given category. Returns the created items in that order.
func FakeWardrobe(db *gorm.DB, userID uint, category string) []models.WardrobeItem {
	items := []models.WardrobeItem{
		{Name: "White Tee", Category: category, ItemType: models.TypeTop, Color: "white", Status: models.StatusClean, OwnerID: userID},
		{Name: "Blue Jeans", Category: category, ItemType: models.TypeBottom, Color: "blue", Status: models.StatusClean, OwnerID: userID},
		{Name: "Sneakers", Category: category, ItemType: models.TypeShoes, Color: "white", Status: models.StatusClean, OwnerID: userID},
	}
	for i := range items {
		db.Create(&items[i])
	}
	return items
}

// WeatherProviderMock returns a fixed snapshot, or Err if set.
type WeatherProviderMock struct {
	Snapshot services.WeatherSnapshot
	Err      error
	Calls    int
}

func (m *WeatherProviderMock) Current(ctx context.Context, lat, lon float64) (*services.WeatherSnapshot, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	snapshot := m.Snapshot
	return &snapshot, nil
}

// OutfitLLMMock replays scripted replies in order; the last reply repeats if
// the service calls more times than scripted. Prompts are recorded so tests
// can assert on corrective clauses.
type OutfitLLMMock struct {
	Replies []string
	Errs    []*services.LLMError
	Prompts []string
	Temps   []float64
}

func (m *OutfitLLMMock) GenerateOutfitCandidate(ctx context.Context, prompt string, temperature float64) (*services.GenerationCandidate, *services.LLMError) {
	call := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)
	m.Temps = append(m.Temps, temperature)
	if len(m.Errs) > 0 {
		idx := call
		if idx >= len(m.Errs) {
			idx = len(m.Errs) - 1
		}
		if m.Errs[idx] != nil {
			return nil, m.Errs[idx]
		}
	}
	idx := call
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	return services.ParseCandidateText(m.Replies[idx])
}

func (m *OutfitLLMMock) CallCount() int {
	return len(m.Prompts)
}
