/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"  // go get github.com/golang-jwt/jwt
	"github.com/google/uuid"     // go get github.com/google/uuid
	"golang.org/x/crypto/bcrypt" // go get golang.org/x/crypto/bcrypt
)

type UserSession struct {
	SID    uuid.UUID    `json:"sid"`
	REFTok string       `json:"ref_token"`
	ACCTok string       `json:"acc_token"`
	USR    UserResponse `json:"user"`
}

type UserSessionMap map[string]UserSession

var UserSessions = make(UserSessionMap)
var UserSessionsRWMutex = sync.RWMutex{}

func UserSessionsMapWrite(u UserSession) (err error) {

	sid := u.SID.String()
	if sid == "" || sid == "00000000-0000-0000-0000-000000000000" {
		err = fmt.Errorf("invalid user session ID")
		return
	}

	UserSessionsRWMutex.Lock()
	UserSessions[sid] = u
	UserSessionsRWMutex.Unlock()
	return
}
func UserSessionsMapRead(sid string) (u UserSession, err error) {
	UserSessionsRWMutex.RLock()
	u = UserSessions[sid]
	UserSessionsRWMutex.RUnlock()

	if u.SID.String() == "00000000-0000-0000-0000-000000000000" {
		err = fmt.Errorf("user session not found; please log in")
	}
	return
}
func UserSessionsMapCopy() (usm UserSessionMap) {
	usm = make(UserSessionMap)
	UserSessionsRWMutex.RLock()
	for sid, us := range UserSessions {
		usm[sid] = us
	}
	UserSessionsRWMutex.RUnlock()
	return
}
func UserSessionsMapRemove(sid string) {
	UserSessionsRWMutex.Lock()
	delete(UserSessions, sid)
	UserSessionsRWMutex.Unlock()
}

/* CREATE A NEW USER WITH THE DEFAULT ROLE */
func RegisterUser(runp RegisterUserInput) (user User, err error) {

	pwHash, err := bcrypt.GenerateFromPassword([]byte(runp.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed to hash password: %s", err.Error())
		return
	}

	user = User{
		Name:     runp.Name,
		Email:    strings.ToLower(runp.Email),
		Password: string(pwHash),
		Role:     ROLE_VIEWER,
	}

	res := FRP.DB.Create(&user)
	if res.Error != nil {
		if strings.Contains(res.Error.Error(), "duplicate key value violates unique") ||
			strings.Contains(res.Error.Error(), "UNIQUE constraint failed") {
			err = fmt.Errorf("user with that email already exists")
		} else {
			err = fmt.Errorf("failed to create user in database: %s", res.Error.Error())
		}
	}

	return
}

/* AUTHENTICATE USER INPUT AND RETURN JWTs */
func LoginUser(lunp LoginUserInput) (us UserSession, err error) {

	user := User{}
	/* CHECK EMAIL */
	res := FRP.DB.First(&user, "email = ?", strings.ToLower(lunp.Email))
	if res.Error != nil {
		err = fmt.Errorf("invalid email or password")
		return
	}

	/* CHECK PASSWORD */
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(lunp.Password)); err != nil {
		err = fmt.Errorf("invalid email or password")
		return
	}

	us.SID = uuid.New()
	us.USR = user.FilterUserRecord()

	if err = us.CreateJWTRefreshToken(JWT_REFRESH_EXPIRED_IN); err != nil {
		err = fmt.Errorf("refresh token generation failed: %s", err.Error())
		return
	}
	if err = us.CreateJWTAccessToken(); err != nil {
		err = fmt.Errorf("access token generation failed: %s", err.Error())
		return
	}

	err = UserSessionsMapWrite(us)
	return
}

/* REMOVES ALL SESSIONS FOR GIVEN USER FROM UserSessionsMap */
func TerminateUserSessions(ur UserResponse) (count int) {

	sess := UserSessionsMapCopy()

	count = 0
	for sid, us := range sess {
		if us.USR.ID == ur.ID {
			UserSessionsMapRemove(sid)
			count++
		}
	}

	return
}

/* RETURNS ALL TOKEN CLAIMS */
func GetClaimsFromTokenString(token string) (claims jwt.MapClaims, err error) {

	tokenByte, err := jwt.Parse(token, func(jwtToken *jwt.Token) (interface{}, error) {
		if _, ok := jwtToken.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", jwtToken.Header["alg"])
		}
		return []byte(JWT_SECRET), nil
	})
	if err != nil {
		return
	}

	claims, ok := tokenByte.Claims.(jwt.MapClaims)
	if !ok || !tokenByte.Valid {
		err = fmt.Errorf("invalid token claim")
		return
	}
	return
}

/* REMOVES THE SESSION FOR GIVEN USER FROM UserSessionsMap */
func (us *UserSession) LogoutUser() {
	UserSessionsMapRemove(us.SID.String())
}

/* CREATES A NEW ACCESS TOKEN IF THE MAPPED REFRESH TOKEN HAS NOT EXPIRED */
func (us *UserSession) RefreshAccessToken() (err error) {

	mus, err := UserSessionsMapRead(us.SID.String())
	if err != nil {
		return
	}

	ref_claims, err := GetClaimsFromTokenString(mus.REFTok)
	if err != nil {
		return err
	}
	exp := 0
	now := int(time.Now().Unix())
	if fExp, ok := ref_claims["exp"].(float64); ok {
		exp = int(fExp)
	}

	if exp < now {
		return fmt.Errorf("your refresh token has expired; please log in")
	}

	us.USR = mus.USR
	if err = us.CreateJWTAccessToken(); err != nil {
		return
	}

	return UserSessionsMapWrite(*us)
}

/* CREATES A JWT REFRESH TOKEN; USED ON LOGIN ONLY */
func (us *UserSession) CreateJWTRefreshToken(dur time.Duration) (err error) {

	tokByte := jwt.New(jwt.SigningMethodHS256)
	tokClaims := tokByte.Claims.(jwt.MapClaims)
	tokClaims["sub"] = us.USR.ID
	tokClaims["exp"] = time.Now().UTC().Add(dur).Unix()

	us.REFTok, err = tokByte.SignedString([]byte(JWT_SECRET))
	if err != nil {
		err = fmt.Errorf("failed to sign refresh token: %s", err.Error())
	}
	return
}

/* CREATES A JWT ACCESS TOKEN; USED ON LOGIN AND SUBSEQUENT REFRESHES */
func (us *UserSession) CreateJWTAccessToken() (err error) {

	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"sub": us.USR.ID,
		"rol": us.USR.Role,
		"exp": now.Add(JWT_EXPIRED_IN).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}
	tokenByte := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	us.ACCTok, err = tokenByte.SignedString([]byte(JWT_SECRET))
	if err != nil {
		err = fmt.Errorf("failed to sign access token: %s", err.Error())
	}
	return
}

func GetUserByID(userID interface{}) (user User, err error) {

	FRP.DB.First(&user, "id = ?", userID)
	if user.ID.String() != userID {
		err = fmt.Errorf("the user belonging to this token no longer exists")
	}
	return
}

func GetUserList() (users []UserResponse, err error) {

	us := []User{}
	res := FRP.DB.Find(&us)
	if res.Error != nil {
		err = fmt.Errorf("failed to retrieve users from database: %s", res.Error.Error())
		return
	}

	for _, user := range us {
		users = append(users, user.FilterUserRecord())
	}

	return
}
