package crypto

import (
	"strings"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/farm-management/internal"
)

func TestCrypto(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Credential Cipher Suite")
}

var _ = ginkgo.Describe("CredentialCipher", func() {
	var c *CredentialCipher

	ginkgo.BeforeEach(func() {
		c = NewCredentialCipher("test-secret-with-enough-entropy-0123456789")
	})

	ginkgo.Describe("Encrypt", func() {
		ginkgo.It("should produce a three-segment hex token", func() {
			token, err := c.Encrypt("s3cret-db-password")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			parts := strings.Split(token, ":")
			gomega.Expect(parts).To(gomega.HaveLen(3))
			gomega.Expect(parts[0]).To(gomega.HaveLen(nonceLength * 2))
			gomega.Expect(parts[1]).To(gomega.HaveLen(tagLength * 2))
		})

		ginkgo.It("should produce different tokens for the same plaintext", func() {
			first, err := c.Encrypt("same-password")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			second, err := c.Encrypt("same-password")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(first).ToNot(gomega.Equal(second))
		})

		ginkgo.It("should fail fast when the secret is unset", func() {
			empty := NewCredentialCipher("")

			_, err := empty.Encrypt("anything")

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeConfiguration))
		})
	})

	ginkgo.Describe("Decrypt", func() {
		ginkgo.It("should round-trip any plaintext", func() {
			for _, plaintext := range []string{"p", "a longer database password", "", "unicode-pässwörd"} {
				token, err := c.Encrypt(plaintext)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				decrypted, err := c.Decrypt(token)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(decrypted).To(gomega.Equal(plaintext))
			}
		})

		ginkgo.It("should detect tampering of any token segment", func() {
			token, err := c.Encrypt("db-password")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			for i := 0; i < len(token); i++ {
				if token[i] == ':' {
					continue
				}
				flipped := token[i]
				replacement := byte('0')
				if flipped == '0' {
					replacement = '1'
				}
				tampered := token[:i] + string(replacement) + token[i+1:]

				_, err := c.Decrypt(tampered)

				gomega.Expect(err).To(gomega.HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeIntegrity))
			}
		})

		ginkgo.It("should reject malformed tokens", func() {
			for _, malformed := range []string{"", "nothex", "aa:bb", "aa:bb:cc:dd", "zz:zz:zz"} {
				_, err := c.Decrypt(malformed)

				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeIntegrity))
			}
		})

		ginkgo.It("should fail with an integrity error when the secret was rotated", func() {
			token, err := c.Encrypt("db-password")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rotated := NewCredentialCipher("another-secret-with-enough-entropy-987654")

			_, err = rotated.Decrypt(token)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeIntegrity))
		})

		ginkgo.It("should fail fast when the secret is unset", func() {
			empty := NewCredentialCipher("")

			_, err := empty.Decrypt("aa:bb:cc")

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeConfiguration))
		})
	})

	ginkgo.Describe("GenerateRandomSecret", func() {
		ginkgo.It("should generate distinct hex secrets", func() {
			first, err := GenerateRandomSecret()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(first).To(gomega.HaveLen(64))

			second, err := GenerateRandomSecret()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second).ToNot(gomega.Equal(first))
		})
	})
})
