package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("creates a manager with an override directory", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).NotTo(BeNil())
			Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds).NotTo(BeNil())
			Expect(creds.Sessions).To(BeEmpty())
		})

		It("loads existing credentials", func() {
			data := `version = 0

[sessions."http://localhost:8080"]
token = "tok-test"
learner = "kalani"
`
			err := os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Sessions).To(HaveKey("http://localhost:8080"))
			Expect(creds.Sessions["http://localhost:8080"].Token).To(Equal("tok-test"))
			Expect(creds.Sessions["http://localhost:8080"].Learner).To(Equal("kalani"))
		})

		It("returns error for malformed TOML", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte("not valid [[["), 0o600)
			Expect(err).NotTo(HaveOccurred())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds, err := mgr.Load()
			Expect(err).To(HaveOccurred())
			Expect(creds).To(BeNil())
		})
	})

	Describe("Save", func() {
		It("persists credentials to disk with restricted permissions", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds := &credentials.Credentials{
				Sessions: map[string]credentials.SessionCredential{
					"http://localhost:8080": {Token: "tok-test", Learner: "kalani"},
				},
			}
			err = mgr.Save(creds)
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(filepath.Join(tmpDir, "credentials.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("returns error for nil credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.Save(nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetSession", func() {
		It("stores a new session", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080", "tok-new", "kalani")
			Expect(err).NotTo(HaveOccurred())

			token, err := mgr.GetToken("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-new"))
		})

		It("overwrites an existing session", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080", "tok-old", "kalani")
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080", "tok-new", "kalani")
			Expect(err).NotTo(HaveOccurred())

			token, err := mgr.GetToken("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-new"))
		})

		It("preserves sessions for other servers", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080", "tok-local", "kalani")
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("https://study.example.com", "tok-remote", "kalani")
			Expect(err).NotTo(HaveOccurred())

			token, err := mgr.GetToken("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-local"))

			token, err = mgr.GetToken("https://study.example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-remote"))
		})

		It("treats trailing-slash URLs as the same server", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080/", "tok-slash", "kalani")
			Expect(err).NotTo(HaveOccurred())

			token, err := mgr.GetToken("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-slash"))
		})
	})

	Describe("GetSession", func() {
		It("returns the stored learner alongside the token", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080", "tok-test", "kalani")
			Expect(err).NotTo(HaveOccurred())

			sc, err := mgr.GetSession("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc).NotTo(BeNil())
			Expect(sc.Token).To(Equal("tok-test"))
			Expect(sc.Learner).To(Equal("kalani"))
		})

		It("returns nil for an unknown server", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			sc, err := mgr.GetSession("http://nowhere:1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc).To(BeNil())
		})
	})

	Describe("GetToken", func() {
		It("returns empty string for an unknown server", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			token, err := mgr.GetToken("http://nowhere:1")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})

	Describe("RemoveSession", func() {
		It("removes an existing session", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("http://localhost:8080", "tok-test", "kalani")
			Expect(err).NotTo(HaveOccurred())

			err = mgr.RemoveSession("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())

			token, err := mgr.GetToken("http://localhost:8080")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})

		It("is a no-op for a server with no session", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.RemoveSession("http://nowhere:1")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ListServers", func() {
		It("returns empty list when no sessions stored", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			servers, err := mgr.ListServers()
			Expect(err).NotTo(HaveOccurred())
			Expect(servers).To(BeEmpty())
		})

		It("returns stored servers in sorted order", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetSession("https://study.example.com", "tok-1", "kalani")
			Expect(err).NotTo(HaveOccurred())
			err = mgr.SetSession("http://localhost:8080", "tok-2", "kalani")
			Expect(err).NotTo(HaveOccurred())

			servers, err := mgr.ListServers()
			Expect(err).NotTo(HaveOccurred())
			Expect(servers).To(Equal([]string{"http://localhost:8080", "https://study.example.com"}))
		})
	})
})
