package core

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	msgInvalidCredentials = "Usuário ou senha inválidos"
	msgLoginThrottled     = "Muitas tentativas de login. Tente novamente mais tarde."
	msgInternalError      = "Ocorreu um erro interno. Tente novamente."
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, codec *SessionCodec, authService AuthService, reports *ReportService, limiter *LoginLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	// ClientIP keys the login throttle; forwarded headers count only from listed proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("ignoring invalid trusted proxies", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.SetHTMLTemplate(template.Must(parseTemplates()))

	guard := NewSessionGuard(codec, logger)

	// Global middleware: recovery -> request id -> access log -> origin -> session
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(OriginRefererMiddleware(cfg))
	r.Use(SessionMiddleware(guard))

	r.StaticFS("/static", staticFS())

	r.NoRoute(func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "Página não encontrada.")
	})

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := reports.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		if _, ok := currentSession(c); !ok {
			c.HTML(http.StatusOK, "login.html", page(c, "Entrar", nil))
			return
		}
		c.HTML(http.StatusOK, "dashboard.html", page(c, "Início", nil))
	})

	r.POST("/realizar_login", func(c *gin.Context) {
		var form struct {
			Login    string `form:"usuario" binding:"required"`
			Password string `form:"senha" binding:"required"`
		}
		if err := c.ShouldBind(&form); err != nil {
			c.HTML(http.StatusUnauthorized, "login.html", page(c, "Entrar", gin.H{"error": msgInvalidCredentials, "login": form.Login}))
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		if err := limiter.Check(ctx, form.Login, clientIP); err != nil {
			if errors.Is(err, ErrLoginThrottled) {
				c.HTML(http.StatusTooManyRequests, "login.html", page(c, "Entrar", gin.H{"error": msgLoginThrottled, "login": form.Login}))
				return
			}
			logger.Warn("login throttle unavailable", zap.Error(err))
		}

		sess, err := authService.Verify(ctx, form.Login, form.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				if err := limiter.RecordFailure(ctx, form.Login, clientIP); err != nil {
					logger.Warn("failed to record login failure", zap.Error(err))
				}
				c.HTML(http.StatusUnauthorized, "login.html", page(c, "Entrar", gin.H{"error": msgInvalidCredentials, "login": form.Login}))
				return
			}
			internalError(c, logger, err)
			return
		}
		if err := limiter.Reset(ctx, form.Login, clientIP); err != nil {
			logger.Warn("failed to reset login failures", zap.Error(err))
		}

		token, err := codec.Encode(sess)
		if err != nil {
			internalError(c, logger, err)
			return
		}
		setSessionCookie(c, cfg, token)
		logger.Info("login", zap.String("usuario", sess.User), zap.String("request_id", c.GetString(requestIDKey)))
		c.Redirect(http.StatusSeeOther, "/")
	})

	r.GET("/logout", func(c *gin.Context) {
		clearSessionCookie(c, cfg)
		c.Redirect(http.StatusSeeOther, "/")
	})

	protected := r.Group("/", RequireSession())
	{
		protected.GET("/alunos", func(c *gin.Context) {
			students, err := reports.ListStudents(c.Request.Context())
			if err != nil {
				internalError(c, logger, err)
				return
			}
			c.HTML(http.StatusOK, "students.html", page(c, "Alunos", gin.H{"alunos": students}))
		})

		protected.GET("/professores", func(c *gin.Context) {
			teachers, err := reports.ListTeachers(c.Request.Context())
			if err != nil {
				internalError(c, logger, err)
				return
			}
			c.HTML(http.StatusOK, "teachers.html", page(c, "Professores", gin.H{"professores": teachers}))
		})

		protected.GET("/disciplinas/relatorio", func(c *gin.Context) {
			rosters, err := reports.CourseRosters(c.Request.Context())
			if err != nil {
				internalError(c, logger, err)
				return
			}
			c.HTML(http.StatusOK, "course_roster.html", page(c, "Diário de Disciplinas", gin.H{"relatorio": rosters}))
		})

		protected.GET("/disciplinas/relatorio.xlsx", func(c *gin.Context) {
			rosters, err := reports.CourseRosters(c.Request.Context())
			if err != nil {
				internalError(c, logger, err)
				return
			}
			var buf bytes.Buffer
			if err := WriteRosterWorkbook(&buf, rosters); err != nil {
				internalError(c, logger, err)
				return
			}
			c.Header("Content-Disposition", `attachment; filename="diario_disciplinas.xlsx"`)
			c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		})

		protected.GET("/aluno/:id/atestado", func(c *gin.Context) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				renderError(c, http.StatusBadRequest, "Identificador de aluno inválido.")
				return
			}
			cert, err := reports.StudentCertificate(c.Request.Context(), id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					renderError(c, http.StatusNotFound, "Aluno não encontrado")
					return
				}
				internalError(c, logger, err)
				return
			}
			c.HTML(http.StatusOK, "certificate.html", page(c, "Atestado de Matrícula", gin.H{
				"aluno":      cert.Student,
				"matriculas": cert.Enrollments,
			}))
		})

		protected.GET("/detalhar", func(c *gin.Context) {
			c.HTML(http.StatusOK, "detail.html", page(c, "Detalhamento", gin.H{"passingAverage": PassingAverage}))
		})
	}

	return r
}

// page merges the common layout fields into data.
func page(c *gin.Context, title string, data gin.H) gin.H {
	out := gin.H{"title": title}
	if s, ok := currentSession(c); ok {
		out["usuario"] = s.User
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func internalError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(requestIDKey)),
	)
	renderError(c, http.StatusInternalServerError, msgInternalError)
}
