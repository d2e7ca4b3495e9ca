package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Roles a user record can carry.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered member profile. Email and mobile are each
// globally unique (enforced by the store's unique indexes). The password
// hash is never serialized to clients.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"  json:"id"`
	FirstName    string        `bson:"first_name"     json:"firstName"`
	LastName     string        `bson:"last_name"      json:"lastName"`
	Email        string        `bson:"email"          json:"email"`
	Mobile       string        `bson:"mobile"         json:"mobile"`
	PasswordHash string        `bson:"password_hash"  json:"-"`
	Role         string        `bson:"role"           json:"role"`
	IsVerified   bool          `bson:"is_verified"    json:"isVerified"`
	IsActive     bool          `bson:"is_active"      json:"isActive"`

	Gender        string `bson:"gender"         json:"gender"`
	DateOfBirth   string `bson:"date_of_birth"  json:"dateOfBirth"`
	Age           int    `bson:"age"            json:"age"`
	Religion      string `bson:"religion"       json:"religion"`
	Caste         string `bson:"caste"          json:"caste"`
	MotherTongue  string `bson:"mother_tongue"  json:"motherTongue"`
	MaritalStatus string `bson:"marital_status" json:"maritalStatus"`
	Height        string `bson:"height"         json:"height"`
	Education     string `bson:"education"      json:"education"`
	Occupation    string `bson:"occupation"     json:"occupation"`
	AnnualIncome  string `bson:"annual_income"  json:"annualIncome"`
	Country       string `bson:"country"        json:"country"`
	State         string `bson:"state"          json:"state"`
	City          string `bson:"city"           json:"city"`
	About         string `bson:"about"          json:"about"`

	// ProfileImage holds the public static path of the committed profile
	// photo, empty when none was uploaded.
	ProfileImage string `bson:"profile_image" json:"profileImage"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
