package utils

import (
	"crypto/rand"
	"math/big"
)

// RollDie lance un dé à n faces et retourne un résultat entre 1 et n
func RollDie(sides int) int {
	if sides <= 0 {
		return 1
	}
	maxVal := big.NewInt(int64(sides))
	n, err := rand.Int(rand.Reader, maxVal)
	if err != nil {
		// Fallback en cas d'erreur (ne devrait pas arriver)
		return 1
	}
	return int(n.Int64()) + 1
}

// RollD20 lance un d20 d'initiative
func RollD20() int {
	return RollDie(20)
}

// Roll2D10 lance les deux d10 d'un jet de pouvoir
func Roll2D10() [2]int {
	return [2]int{RollDie(10), RollDie(10)}
}

// SecureRandIntn génère un entier aléatoire sécurisé entre 0 et n-1
func SecureRandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	maxVal := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, maxVal)
	if err != nil {
		// Fallback en cas d'erreur
		return 0
	}
	return int(result.Int64())
}
