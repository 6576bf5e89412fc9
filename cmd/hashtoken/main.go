// hashtoken печатает Argon2id-хеш админ-токена для ADMIN_TOKEN_HASH.
//
//	go run ./cmd/hashtoken <токен>
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"serotonyl.ru/wingman-challenges/internal/features/admin"
)

func main() {
	memory := flag.Uint("m", 64*1024, "память в КБ")
	iterations := flag.Uint("t", 3, "число итераций")
	parallelism := flag.Uint("p", 2, "число потоков")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Использование: hashtoken [-m 65536 -t 3 -p 2] <токен>")
		os.Exit(2)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка генерации соли: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(admin.EncodeArgon2id(flag.Arg(0), salt, uint32(*memory), uint32(*iterations), uint8(*parallelism)))
}
