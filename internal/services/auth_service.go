package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/mr-tron/base58"
	"gorm.io/gorm"

	"freelance-escrow/internal/models"
	"freelance-escrow/internal/utils"
)

// AuthService handles wallet-based authentication
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// ValidWalletAddress checks that the address is base58 and decodes to a
// 32-byte public key.
func ValidWalletAddress(address string) bool {
	decoded, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// ProcessWalletLogin finds or creates a user by wallet address
func (s *AuthService) ProcessWalletLogin(walletAddress string) (*models.User, error) {
	if !ValidWalletAddress(walletAddress) {
		return nil, models.ErrInvalidWallet
	}

	var user models.User
	result := s.db.Where("wallet_address = ?", walletAddress).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		nickname, err := utils.GenerateHandle()
		if err != nil {
			return nil, fmt.Errorf("failed to generate handle: %w", err)
		}

		user = models.User{
			WalletAddress: walletAddress,
			Nickname:      nickname,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Printf("New user created: wallet=%s (ID: %d)", walletAddress, user.ID)
	} else if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	} else {
		log.Printf("User logged in: wallet=%s (ID: %d)", walletAddress, user.ID)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
