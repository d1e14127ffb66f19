package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService UserServiceInterface
	jwtSecret   string
}

func NewUserController(userService UserServiceInterface, jwtSecret string) *UserController {
	return &UserController{
		userService: userService,
		jwtSecret:   jwtSecret,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles user registration. Validation is ordered and
// short-circuits before any store access: name, then email, then password.
func (a *UserController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Name is required and must be a non-empty string"})
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Valid email is required"})
		return
	}

	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Password must be at least 6 characters long"})
		return
	}

	newUser, token, err := a.userService.Signup(req.Name, req.Email, req.Password, a.jwtSecret)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists", "error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating user", "error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"data": gin.H{
			"id":    newUser.ID,
			"name":  newUser.Name,
			"email": newUser.Email,
			"token": token,
		},
	})
}

// Login handles user login. Unknown email and wrong password produce the
// identical response.
func (a *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Invalid request body"})
		return
	}

	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Email is required"})
		return
	}

	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Password is required"})
		return
	}

	loggedIn, token, err := a.userService.Login(req.Email, req.Password, a.jwtSecret)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed", "error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error during login", "error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data": gin.H{
			"id":    loggedIn.ID,
			"name":  loggedIn.Name,
			"email": loggedIn.Email,
			"token": token,
		},
	})
}
