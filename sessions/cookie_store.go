package sessions

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "canvas-dashboard session v1"

// nowTime stamps iat on issued sessions. It can be overridden in tests.
var nowTime = time.Now

var _ Store = (*CookieStore)(nil)

type sessionClaims struct {
	Session
	jwtlib.RegisteredClaims
}

// CookieStore keeps the whole session in an HS256-signed cookie
type CookieStore struct {
	name string
	key  []byte
}

// NewCookieStore derives the signing key from secret. An empty secret gets a
// random key, so sessions do not survive a restart.
func NewCookieStore(cookieName, secret string) (*CookieStore, error) {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	var ikm []byte
	if secret != "" {
		ikm = []byte(secret)
	} else {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, errors.Wrap(err, "[NewCookieStore] random key")
		}
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(keyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "[NewCookieStore] derive key")
	}
	return &CookieStore{name: cookieName, key: key}, nil
}

func (cs *CookieStore) Load(r *http.Request) (Session, error) {
	value, err := readCookie(r, cs.name)
	if err != nil {
		return Session{}, err
	}

	claims := sessionClaims{}
	_, err = jwtlib.ParseWithClaims(value, &claims, func(*jwtlib.Token) (interface{}, error) {
		return cs.key, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrSessionInvalid, "[CookieStore] %s", err.Error())
	}
	if err := claims.Session.validate(); err != nil {
		return Session{}, err
	}
	return claims.Session, nil
}

func (cs *CookieStore) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	if err := s.validate(); err != nil {
		return err
	}
	claims := sessionClaims{
		Session: s,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:  s.UserID,
			IssuedAt: jwtlib.NewNumericDate(nowTime()),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(cs.key)
	if err != nil {
		return errors.Wrap(err, "[CookieStore.Save] sign session")
	}
	setCookie(w, r, cs.name, signed)
	return nil
}

func (cs *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	expireCookie(w, r, cs.name)
	return nil
}
