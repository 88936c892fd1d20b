package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardFor(t *testing.T) {
	cases := []struct {
		name string
		user SessionUser
		want Dashboard
	}{
		{"hod role", SessionUser{Role: RoleHOD}, DashboardHOD},
		{"chair of head of delegation", SessionUser{Role: RoleChair, SubcommitteeName: "Head Of Delegation"}, DashboardHOD},
		{"vice chair of head of delegation", SessionUser{Role: RoleViceChair, SubcommitteeName: " head of delegation "}, DashboardHOD},
		{"plain chair", SessionUser{Role: RoleChair, SubcommitteeName: "Domestic Revenue"}, DashboardChair},
		{"commissioner", SessionUser{Role: RoleCommissionerGeneral}, DashboardCommissioner},
		{"secretary", SessionUser{Role: RoleSecretary}, DashboardSecretary},
		{"admin", SessionUser{Role: RoleAdmin}, DashboardSecretary},
		{"member", SessionUser{Role: RoleSubcommitteeMember}, DashboardMember},
		{"delegation secretary", SessionUser{Role: RoleDelegationSecretary}, DashboardMember},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DashboardFor(tc.user))
		})
	}
}

func TestSessionRecordCopiesRefs(t *testing.T) {
	u := User{
		ID:           7,
		Email:        "chair@eara.org",
		Role:         RoleChair,
		Subcommittee: &SubcommitteeRef{ID: 3, Name: "Customs"},
		Country:      &CountryRef{ID: 2, Name: "Kenya"},
	}
	rec := u.SessionRecord()
	assert.Equal(t, int64(3), rec.SubcommitteeID)
	assert.Equal(t, "Customs", rec.SubcommitteeName)
	assert.Equal(t, int64(2), rec.CountryID)
	assert.Equal(t, "chair@eara.org", rec.DisplayName())
}

func TestProfileUpdateValidate(t *testing.T) {
	p := ProfileUpdate{Name: " Amina ", Email: "amina@eara.org", Phone: "0712 345 678"}
	require.Empty(t, p.Validate("KE"))
	assert.Equal(t, "Amina", p.Name)
	assert.Equal(t, "+254712345678", p.Phone)

	bad := ProfileUpdate{Email: "not-an-email", Phone: "12"}
	errs := bad.Validate("KE")
	assert.Contains(t, errs, "Name is required")
	assert.Contains(t, errs, "Email is invalid")
	assert.Contains(t, errs, "Phone number is invalid")
}

func TestPasswordChangeValidate(t *testing.T) {
	assert.Empty(t, PasswordChange{CurrentPassword: "old-pass", NewPassword: "secret1", ConfirmPassword: "secret1"}.Validate())

	errs := PasswordChange{NewPassword: "abc", ConfirmPassword: "abd"}.Validate()
	assert.Len(t, errs, 3)

	errs = PasswordChange{CurrentPassword: "same-pass", NewPassword: "same-pass", ConfirmPassword: "same-pass"}.Validate()
	assert.Equal(t, []string{"New password must be different from the current password"}, errs)
}

func TestPictureUploadValidate(t *testing.T) {
	assert.Empty(t, PictureUpload{Filename: "me.PNG", ContentType: "image/png", Size: 1024}.Validate())

	errs := PictureUpload{Filename: "cv.pdf", ContentType: "application/pdf", Size: MaxPictureSize + 1}.Validate()
	assert.Len(t, errs, 3)

	assert.Empty(t, PictureUpload{Filename: "x.webp", ContentType: "image/webp", Size: MaxPictureSize}.Validate())
}

func TestResolvePictureURL(t *testing.T) {
	origin := "https://api.eara.org/"
	assert.Equal(t, "", ResolvePictureURL(origin, ""))
	assert.Equal(t, "https://cdn.example.com/a.png", ResolvePictureURL(origin, "https://cdn.example.com/a.png"))
	assert.Equal(t, "https://api.eara.org/uploads/a.png", ResolvePictureURL(origin, "/uploads/a.png"))
	assert.True(t, strings.HasSuffix(ResolvePictureURL(origin, "uploads/a.png"), ".org/uploads/a.png"))
}
