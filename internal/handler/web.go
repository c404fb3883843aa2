package handler

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"absensi/internal/geo"
	"absensi/internal/i18n"
	"absensi/internal/model"
	"absensi/internal/service"
	"absensi/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

const flashCookie = "absensi_flash"

type WebOptions struct {
	Location     *time.Location
	CookieSecure bool
	SessionTTL   time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

// WebHandler serves the browser shell: auth screen, check-in view and admin
// dashboard.
type WebHandler struct {
	auth       *service.AuthService
	attendance *service.AttendanceService
	admin      *service.AdminService
	tmpl       *template.Template
	opts       WebOptions

	// last successful dashboard per admin uid, shown again when a fetch fails
	mu   sync.Mutex
	last map[string]*service.Dashboard
}

func NewWebHandler(auth *service.AuthService, attendance *service.AttendanceService, admin *service.AdminService, opts WebOptions) (*WebHandler, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	// "t" is rebound per request to the caller's locale.
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"t":  func(id string) string { return id },
		"tf": func(id string, kv ...any) string { return id },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &WebHandler{auth: auth, attendance: attendance, admin: admin, tmpl: tmpl, opts: opts, last: make(map[string]*service.Dashboard)}, nil
}

type flash struct {
	Kind string `json:"kind"` // success or error
	Text string `json:"text"`
}

type historyRow struct {
	When     string
	Status   model.AttendanceStatus
	Badge    string
	Location string
}

type authForm struct {
	Name  string
	Email string
	Role  string
}

type page struct {
	Session   *session.Session
	View      string
	Mode      string
	Form      authForm
	Flash     *flash
	Alert     string
	Clock     string
	Today     string
	Year      int
	History   []historyRow
	Dashboard *service.Dashboard
	Sort      string
}

func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, status int, p *page) {
	ctx := r.Context()
	tmpl, err := h.tmpl.Clone()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpl.Funcs(template.FuncMap{
		"t": func(id string) string { return i18n.T(ctx, id) },
		"tf": func(id string, kv ...any) string {
			data := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				data[fmt.Sprint(kv[i])] = kv[i+1]
			}
			return i18n.T(ctx, id, data)
		},
	})

	now := h.opts.Now().In(h.opts.Location)
	p.Year = now.Year()
	p.Clock = model.TimeOfDay(now, h.opts.Location)
	p.Today = model.DateString(now, h.opts.Location)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.opts.Logger.ErrorContext(ctx, "render page", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// HandleIndex shows the auth screen, the check-in view or the admin dashboard.
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	p := &page{Session: session.FromContext(r.Context()), Flash: h.takeFlash(w, r)}
	if p.Session == nil {
		p.Mode = r.URL.Query().Get("mode")
		h.render(w, r, http.StatusOK, p)
		return
	}

	p.View = p.Session.View(r.URL.Query().Get("view"))
	if p.View == "admin" {
		h.loadDashboard(r, p)
	} else {
		h.loadHistory(r, p)
	}
	h.render(w, r, http.StatusOK, p)
}

func (h *WebHandler) loadHistory(r *http.Request, p *page) {
	records, err := h.attendance.History(r.Context(), p.Session.Identity.UID)
	if err != nil {
		h.opts.Logger.ErrorContext(r.Context(), "fetch history failed", "error", err)
		return
	}
	p.History = h.historyRows(records)
}

func (h *WebHandler) historyRows(records []*model.AttendanceRecord) []historyRow {
	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		row := historyRow{
			When:   model.FormatTimestamp(rec.CreatedAt, h.opts.Location),
			Status: rec.Status,
			Badge:  rec.Status.Badge(),
		}
		if rec.Location != nil {
			row.Location = fmt.Sprintf("%.4f, %.4f", rec.Location.Lat, rec.Location.Lng)
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *WebHandler) loadDashboard(r *http.Request, p *page) {
	q := r.URL.Query()
	p.Sort = q.Get("sort")
	rng, err := h.admin.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		p.Alert = i18n.T(r.Context(), "error_invalid_range")
		rng, _ = h.admin.ParseRange("", "")
	}
	uid := p.Session.Identity.UID
	d, err := h.admin.Dashboard(r.Context(), rng, p.Sort)
	if err != nil {
		h.opts.Logger.ErrorContext(r.Context(), "admin fetch failed", "error", err)
		p.Alert = i18n.T(r.Context(), "admin_fetch_failed")
		h.mu.Lock()
		prev := h.last[uid]
		h.mu.Unlock()
		if prev == nil {
			prev = &service.Dashboard{Range: rng, Stats: model.Tally(nil)}
		}
		p.Dashboard = prev
		return
	}
	h.mu.Lock()
	h.last[uid] = d
	h.mu.Unlock()
	p.Dashboard = d
}

// HandleSignIn processes the sign-in form.
func (h *WebHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req := service.SignInRequest{Email: r.FormValue("email"), Password: r.FormValue("password")}
	sess, err := h.auth.SignIn(r.Context(), req)
	if err != nil {
		h.authFailed(w, r, "signin", authForm{Email: req.Email}, err)
		return
	}
	h.startSession(w, r, sess)
}

// HandleSignUp processes the sign-up form.
func (h *WebHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	req := service.SignUpRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     model.Role(r.FormValue("role")),
	}
	sess, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		h.authFailed(w, r, "signup", authForm{Name: req.Name, Email: req.Email, Role: string(req.Role)}, err)
		return
	}
	h.startSession(w, r, sess)
}

func (h *WebHandler) authFailed(w http.ResponseWriter, r *http.Request, mode string, form authForm, err error) {
	status, msgID := classify(err)
	text := err.Error()
	if msgID != "" {
		text = i18n.T(r.Context(), msgID)
	}
	if status >= 500 {
		h.opts.Logger.ErrorContext(r.Context(), "authentication failed", "mode", mode, "error", err)
	}
	h.render(w, r, status, &page{Mode: mode, Form: form, Flash: &flash{Kind: "error", Text: text}})
}

func (h *WebHandler) startSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSignOut revokes the session and clears the cookie.
func (h *WebHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		if err := h.auth.SignOut(r.Context(), sess.Token); err != nil {
			h.opts.Logger.WarnContext(r.Context(), "sign out failed", "error", err)
		}
		h.mu.Lock()
		delete(h.last, sess.Identity.UID)
		h.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.opts.CookieSecure})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleCheckIn processes the check-in form and redirects back with a
// flash message.
func (h *WebHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	result, err := h.attendance.CheckIn(r.Context(), sess, service.CheckInRequest{
		Override: model.AttendanceStatus(r.FormValue("status")),
		Locator:  geo.ParseReported(r.FormValue("lat"), r.FormValue("lng")),
	})
	if err != nil {
		_, msgID := classify(err)
		text := err.Error()
		switch {
		case msgID != "":
			text = i18n.T(r.Context(), msgID)
		case text == "":
			text = i18n.T(r.Context(), "checkin_failed")
		}
		h.setFlash(w, flash{Kind: "error", Text: text})
	} else {
		h.setFlash(w, flash{Kind: "success", Text: i18n.T(r.Context(), "checkin_success", map[string]any{"Status": result.Record.Status})})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) setFlash(w http.ResponseWriter, f flash) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the flash cookie.
func (h *WebHandler) takeFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(data, &f); err != nil || f.Text == "" {
		return nil
	}
	return &f
}

// RegisterRoutes registers the browser routes on the given mux.
func (h *WebHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("POST /signin", h.HandleSignIn)
	mux.HandleFunc("POST /signup", h.HandleSignUp)
	mux.HandleFunc("POST /signout", h.HandleSignOut)
	mux.HandleFunc("POST /checkin", h.HandleCheckIn)
}
