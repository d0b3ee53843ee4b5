// Package testserver is an in-memory Mini Drive backend built on echo.
// Tests start it with Start; the hidden "devserver" command serves it on a port.
package testserver

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/minidrive/minidrive/internal/auth"
	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/models"
)

// Route names used for fault injection and call counting.
const (
	RouteLanding  = "landing"
	RouteSignup   = "signup"
	RouteLogin    = "login"
	RouteLogout   = "logout"
	RouteValidate = "validate"
	RouteList     = "list"
	RouteUpload   = "upload"
	RouteDelete   = "delete"
	RouteDownload = "download"
	RouteInfo     = "info"
)

const userContextKey = "user"

// Fault forces a route to answer with Status and a JSON Body.
// Times <= 0 means every call until cleared.
type Fault struct {
	Status int
	Body   map[string]any
	Times  int
	Delay  time.Duration
}

type user struct {
	models.User
	password string
}

type storedFile struct {
	record models.FileRecord
	data   []byte
}

// Server is the fake backend.
type Server struct {
	Echo *echo.Echo

	secret   []byte
	tokenTTL time.Duration

	mu     sync.Mutex
	users  map[string]*user // by email
	files  map[uint][]*storedFile
	nextID uint
	calls  map[string]int
	faults map[string]*Fault
}

// New creates a Server with routes registered but not listening.
func New() *Server {
	s := &Server{
		Echo:     echo.New(),
		secret:   []byte(uuid.NewString()),
		tokenTTL: 7 * 24 * time.Hour,
		users:    make(map[string]*user),
		files:    make(map[uint][]*storedFile),
		nextID:   1,
		calls:    make(map[string]int),
		faults:   make(map[string]*Fault),
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.routes()
	return s
}

// Start runs s on an httptest server that is closed when t finishes.
func Start(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s.Echo)
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *Server) routes() {
	e := s.Echo

	e.GET(constants.PathLanding, s.handle(RouteLanding, func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello World from Mini-Drive Check!")
	}))
	e.POST(constants.PathSignup, s.handle(RouteSignup, s.signup))
	e.POST(constants.PathLogin, s.handle(RouteLogin, s.login))
	e.POST(constants.PathLogout, s.handle(RouteLogout, s.logout))
	e.GET(constants.PathValidate, s.handle(RouteValidate, s.validate), s.requireAuth)

	files := e.Group("/files", s.requireAuth)
	files.GET("/list", s.handle(RouteList, s.listFiles))
	files.POST("/upload", s.handle(RouteUpload, s.uploadFile))
	files.DELETE("/delete/:id", s.handle(RouteDelete, s.deleteFile))
	files.GET("/download/:id", s.handle(RouteDownload, s.downloadFile))
	files.GET("/:id", s.handle(RouteInfo, s.fileMetadata))
}

// handle counts calls and applies any configured fault before h runs.
func (s *Server) handle(route string, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.calls[route]++
		f := s.faults[route]
		var fault Fault
		if f != nil {
			fault = *f
			if f.Times > 0 {
				f.Times--
				if f.Times == 0 {
					delete(s.faults, route)
				}
			}
		}
		s.mu.Unlock()

		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}
		if fault.Status != 0 {
			if fault.Body == nil {
				return c.NoContent(fault.Status)
			}
			return c.JSON(fault.Status, fault.Body)
		}
		return h(c)
	}
}

// SetFault installs a fault on route.
func (s *Server) SetFault(route string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = &f
}

// ClearFault removes any fault on route.
func (s *Server) ClearFault(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, route)
}

// Calls returns how many requests reached route, including faulted ones.
// Requests rejected by the auth middleware are not counted.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// ResetCalls zeroes all call counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// CreateUser registers an account directly.
func (s *Server) CreateUser(username, email, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(username, email, password)
}

func (s *Server) createUserLocked(username, email, password string) models.User {
	u := &user{User: models.User{ID: uint(len(s.users) + 1), Username: username, Email: email}, password: password}
	s.users[email] = u
	return u.User
}

// Token issues a session token for email that expires after ttl.
// A negative ttl yields an already-expired token.
func (s *Server) Token(email string, ttl time.Duration) string {
	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("testserver: unknown user %s", email))
	}
	token, err := s.issue(u.User, ttl)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) issue(u models.User, ttl time.Duration) (string, error) {
	return auth.NewToken(auth.Claims{
		Username: u.Username,
		Email:    u.Email,
		ID:       u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Issuer:    "minidrive.app",
		},
	}, s.secret)
}

// SeedFile stores a file for email without going through the upload route.
func (s *Server) SeedFile(email, name string, data []byte) models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		panic(fmt.Sprintf("testserver: unknown user %s", email))
	}
	return s.storeLocked(u.ID, name, http.DetectContentType(data), data)
}

// Files returns the records owned by email in server order.
func (s *Server) Files(email string) []models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil
	}
	out := make([]models.FileRecord, 0, len(s.files[u.ID]))
	for _, f := range s.files[u.ID] {
		out = append(out, f.record)
	}
	return out
}

func (s *Server) storeLocked(userID uint, name, contentType string, data []byte) models.FileRecord {
	now := time.Now().UTC()
	rec := models.FileRecord{
		ID:           s.nextID,
		OriginalName: name,
		StorageName:  uuid.NewString() + filepath.Ext(name),
		ContentType:  contentType,
		Size:         int64(len(data)),
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextID++
	s.files[userID] = append(s.files[userID], &storedFile{record: rec, data: data})
	return rec
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(constants.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
		}

		claims, err := auth.VerifyToken(cookie.Value, s.secret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		s.mu.Lock()
		u, ok := s.users[claims.Email]
		s.mu.Unlock()
		if !ok || u.ID != claims.ID {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}

		c.Set(userContextKey, u.User)
		return next(c)
	}
}

func currentUser(c echo.Context) models.User {
	u, _ := c.Get(userContextKey).(models.User)
	return u
}

func (s *Server) signup(c echo.Context) error {
	var body models.SignupRequest
	if err := c.Bind(&body); err != nil || body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[body.Email]; exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email already exists"})
	}
	s.createUserLocked(body.Username, body.Email, body.Password)

	return c.JSON(http.StatusOK, echo.Map{"message": "User created successfully"})
}

func (s *Server) login(c echo.Context) error {
	var body models.Credentials
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	s.mu.Lock()
	u, ok := s.users[body.Email]
	s.mu.Unlock()
	if !ok || u.password != body.Password {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email or password"})
	}

	token, err := s.issue(u.User, s.tokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to generate token"})
	}

	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(s.tokenTTL),
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "User logged in successfully"})
}

func (s *Server) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "User logged out successfully"})
}

func (s *Server) validate(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "You are logged in",
		"user":    currentUser(c),
	})
}

func (s *Server) listFiles(c echo.Context) error {
	u := currentUser(c)

	s.mu.Lock()
	records := make([]models.FileRecord, 0, len(s.files[u.ID]))
	for _, f := range s.files[u.ID] {
		records = append(records, f.record)
	}
	s.mu.Unlock()

	return c.JSON(http.StatusOK, echo.Map{"files": records})
}

func (s *Server) uploadFile(c echo.Context) error {
	u := currentUser(c)

	fileHeader, err := c.FormFile(constants.UploadFormField)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file uploaded"})
	}
	if fileHeader.Size > constants.MaxUploadSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File size is too large"})
	}
	// Exact, case-sensitive match like the real backend
	if !slices.Contains(constants.AllowedUploadExtensions, filepath.Ext(fileHeader.Filename)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid file type"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to open file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save file"})
	}

	s.mu.Lock()
	rec := s.storeLocked(u.ID, fileHeader.Filename, fileHeader.Header.Get(echo.HeaderContentType), data)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, echo.Map{
		"message": "File uploaded successfully",
		"file":    rec,
	})
}

// lookupLocked finds a file owned by the current user. Caller holds s.mu.
func (s *Server) lookupLocked(userID uint, rawID string) (int, *storedFile) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return -1, nil
	}
	for i, f := range s.files[userID] {
		if uint64(f.record.ID) == id {
			return i, f
		}
	}
	return -1, nil
}

func (s *Server) deleteFile(c echo.Context) error {
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	i, f := s.lookupLocked(u.ID, c.Param("id"))
	if f == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("File record not found in DB for delete. ID: %s, UserID: %d", c.Param("id"), u.ID),
		})
	}
	list := s.files[u.ID]
	s.files[u.ID] = append(list[:i:i], list[i+1:]...)

	return c.JSON(http.StatusOK, echo.Map{"message": "File deleted successfully"})
}

func (s *Server) downloadFile(c echo.Context) error {
	u := currentUser(c)

	s.mu.Lock()
	_, f := s.lookupLocked(u.ID, c.Param("id"))
	s.mu.Unlock()
	if f == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("File record not found in DB. ID: %s, UserID: %d", c.Param("id"), u.ID),
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.record.OriginalName))
	contentType := f.record.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, f.data)
}

func (s *Server) fileMetadata(c echo.Context) error {
	u := currentUser(c)

	s.mu.Lock()
	_, f := s.lookupLocked(u.ID, c.Param("id"))
	s.mu.Unlock()
	if f == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("File metadata not found in DB. ID: %s, UserID: %d", c.Param("id"), u.ID),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":           f.record.ID,
		"name":         f.record.OriginalName,
		"size":         f.record.Size,
		"type":         f.record.ContentType,
		"created_at":   f.record.CreatedAt,
		"download_url": "/files/" + f.record.IDString(),
	})
}
