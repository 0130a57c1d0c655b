package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt 代价因子：登录延迟与爆破成本的折中
const bcryptCost = bcrypt.DefaultCost

func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
