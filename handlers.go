package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mechlog/models"
	"mechlog/pkg/attendance"
	"mechlog/pkg/notify"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

var plateRE = regexp.MustCompile(`^[A-Z0-9-]{2,12}$`)

func setupRoutes(r *gin.Engine) {
	if err := registerValidators(); err != nil {
		log.Fatalf("register validators: %v", err)
	}

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.Static("/uploads", uploadBaseDir())
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)

	mech := authGroup.Group("/mecanico", requireRole(models.RoleMechanic))
	mech.GET("", mechanicDashboardHandler)
	mech.POST("/entrada", checkInHandler)
	mech.POST("/salida", checkOutHandler)
	mech.POST("/trabajos", createJobHandler)

	admin := authGroup.Group("/admin", requireRole(models.RoleAdmin))
	admin.GET("", adminReportHandler)
	admin.GET("/export", adminExportHandler)
	admin.POST("/users", createUserHandler)
}

// registerValidators adds the `plate` binding tag: letters, digits and dashes.
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return plateRE.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		uid, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || uid == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		username, _ := claims["username"].(string)
		name, _ := claims["name"].(string)
		role, _ := claims["role"].(string)
		c.Set("user_id", uint(uid))
		c.Set("username", username)
		c.Set("name", name)
		c.Set("role", role)
		c.Next()
	}
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized"})
			return
		}
		c.Next()
	}
}

// actorFromContext turns the token claims set by jwtAuthMiddleware into the
// caller passed to every attendance operation.
func actorFromContext(c *gin.Context) attendance.Actor {
	return attendance.Actor{UserID: c.GetUint("user_id"), Role: c.GetString("role")}
}

// respondError maps attendance and photo errors to status codes. Anything
// else is a storage failure and stays opaque to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrPhotoRequired),
		errors.Is(err, attendance.ErrInvalidJob),
		errors.Is(err, attendance.ErrInvalidRange),
		errors.Is(err, errPhotoTooLarge),
		errors.Is(err, errPhotoType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrNotCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       c.GetUint("user_id"),
		"username": c.GetString("username"),
		"name":     c.GetString("name"),
		"role":     c.GetString("role"),
	})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	issueTokens(c, user, "login successful")
}

func issueTokens(c *gin.Context, user models.User, message string) {
	tokenString, err := issueAccessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       message,
		"token":         tokenString,
		"refresh_token": refreshToken,
		"role":          user.Role.Name,
		"name":          user.Name,
	})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || !rt.Usable(time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.Preload("Role").First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	// rotate: the presented token can only be used once
	res := db.Model(&models.RefreshToken{}).Where("id = ? AND revoked = ?", rt.ID, false).Update("revoked", true)
	if res.Error != nil || res.RowsAffected != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	issueTokens(c, user, "token refreshed")
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	if err := db.Model(rt).Update("revoked", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// createUserHandler lets an admin add mechanics (default) or other admins.
func createUserHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=255"`
		Password string `json:"password" binding:"required,min=6"`
		Name     string `json:"name" binding:"max=255"`
		Role     string `json:"role" binding:"omitempty,oneof=ADMIN MECANICO"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMechanic
	}
	user, err := RegisterUser(req.Username, req.Password, req.Name, req.Role)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username, "name": user.Name, "role": req.Role})
}

// mechanicDashboardHandler returns today's attendance and jobs of the caller.
func mechanicDashboardHandler(c *gin.Context) {
	today := tracker.Policy().CivilDate(clock())
	rec, jobs, err := tracker.Today(c.Request.Context(), actorFromContext(c), today)
	if err != nil {
		respondError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, gin.H{
		"date":       today,
		"state":      attendance.StateOf(rec).String(),
		"attendance": rec,
		"jobs":       jobs,
	})
}

func checkInHandler(c *gin.Context) {
	ref, err := savePhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	now := clock()
	res, err := tracker.CheckIn(c.Request.Context(), actorFromContext(c), tracker.Policy().CivilDate(now), now, ref)
	if err != nil || !res.Applied {
		discardPhoto(ref)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"already": !res.Applied, "state": res.State.String(), "attendance": res.Record})
}

func checkOutHandler(c *gin.Context) {
	ref, err := savePhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	now := clock()
	res, err := tracker.CheckOut(c.Request.Context(), actorFromContext(c), tracker.Policy().CivilDate(now), now, ref)
	if err != nil || !res.Applied {
		discardPhoto(ref)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Applied {
		go notifier.Notify(notify.CheckOutMessage(displayName(c), res.Record, tracker.Policy().Location))
	}
	c.JSON(http.StatusOK, gin.H{"already": !res.Applied, "state": res.State.String(), "attendance": res.Record})
}

func createJobHandler(c *gin.Context) {
	var req struct {
		Plate       string `json:"plate" form:"plate" binding:"required,plate"`
		JobType     string `json:"job_type" form:"job_type" binding:"required,max=64"`
		Description string `json:"description" form:"description" binding:"required,max=2000"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	today := tracker.Policy().CivilDate(clock())
	job, err := tracker.RecordJob(c.Request.Context(), actorFromContext(c), today, req.Plate, req.JobType, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// reportFromQuery builds the admin report for ?from=&to=, defaulting to the last seven days.
func reportFromQuery(c *gin.Context) (*attendance.Report, error) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		from, to = attendance.DefaultRange(clock())
	}
	return tracker.Report(c.Request.Context(), actorFromContext(c), from, to)
}

func adminReportHandler(c *gin.Context) {
	rep, err := reportFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if rep.Attendance == nil {
		rep.Attendance = []models.Attendance{}
	}
	if rep.Jobs == nil {
		rep.Jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, rep)
}

func adminExportHandler(c *gin.Context) {
	rep, err := reportFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	buf, err := buildWorkbook(rep, tracker.Policy().Location)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="asistencia_%s_%s.xlsx"`, rep.From, rep.To))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func displayName(c *gin.Context) string {
	if n := c.GetString("name"); n != "" {
		return n
	}
	return c.GetString("username")
}
