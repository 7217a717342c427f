package chatcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/dotdir"
)

// newTestRoot mounts the commander under a throwaway root carrying the
// persistent flags the real root command provides.
func newTestRoot(sub *cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "studyhall"}
	root.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	root.PersistentFlags().String("config-dir", "", "Override the .studyhall directory")
	root.AddCommand(sub)
	return root
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// what was written.
func captureStdout(fn func()) string {
	orig := os.Stdout
	r, w, err := os.Pipe()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	os.Stdout = w

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	fn()

	Expect(w.Close()).To(Succeed())
	os.Stdout = orig
	return <-done
}

// withStdin runs fn with os.Stdin reading from a pipe fed with input,
// which makes the command take its piped single-shot path.
func withStdin(input string, fn func()) {
	r, w, err := os.Pipe()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	_, err = w.WriteString(input)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, w.Close()).To(Succeed())

	orig := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = orig
		_ = r.Close()
	}()

	fn()
}

// writeFrame emits one data frame and flushes it so the client sees the
// bytes immediately.
func writeFrame(w http.ResponseWriter, chunk client.Chunk) {
	payload, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n", payload)
	w.(http.Flusher).Flush()
}

var _ = Describe("chat command", func() {
	Describe("structure", func() {
		It("is named chat and takes no positional args", func() {
			cmd := NewChatCmd()
			Expect(cmd.Use).To(Equal("chat"))
			Expect(cmd.Args(cmd, []string{"stray"})).NotTo(Succeed())
		})

		It("defines the chat flags with defaults", func() {
			cmd := NewChatCmd()

			server := cmd.Flags().Lookup("server")
			Expect(server).NotTo(BeNil())
			Expect(server.Shorthand).To(Equal("s"))
			Expect(server.DefValue).To(Equal("http://localhost:8080"))

			newFlag := cmd.Flags().Lookup("new")
			Expect(newFlag).NotTo(BeNil())
			Expect(newFlag.DefValue).To(Equal("false"))

			transcript := cmd.Flags().Lookup("transcript")
			Expect(transcript).NotTo(BeNil())
			Expect(transcript.DefValue).To(Equal(""))
		})
	})

	Describe("piped execution", func() {
		var (
			tmpDir    string
			origWd    string
			origToken string
			hadToken  bool
		)

		BeforeEach(func() {
			tmpDir = GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(tmpDir, ".studyhall"), 0o755)).To(Succeed())

			var err error
			origWd, err = os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())

			origToken, hadToken = os.LookupEnv(credentials.TokenEnvVar)
			Expect(os.Setenv(credentials.TokenEnvVar, "tok-test")).To(Succeed())
		})

		AfterEach(func() {
			Expect(os.Chdir(origWd)).To(Succeed())
			if hadToken {
				Expect(os.Setenv(credentials.TokenEnvVar, origToken)).To(Succeed())
			} else {
				Expect(os.Unsetenv(credentials.TokenEnvVar)).To(Succeed())
			}
		})

		chatServer := func(wantParent, reply, head string) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/v1/mentor/chat"))

				cookie, err := r.Cookie("studyhall_session")
				Expect(err).NotTo(HaveOccurred())
				Expect(cookie.Value).To(Equal("tok-test"))

				var req client.ChatRequest
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.Parent).To(Equal(wantParent))

				writeFrame(w, client.Chunk{Type: "delta", Text: reply})
				writeFrame(w, client.Chunk{Type: "done", Text: reply, Head: head})
			}))
		}

		It("sends piped input as a single prompt and records the thread", func() {
			ts := chatServer("", "Flip the second fraction and multiply.", "head-1")
			defer ts.Close()

			var execErr error
			out := captureStdout(func() {
				withStdin("how do I divide fractions\n", func() {
					root := newTestRoot(NewChatCmd())
					root.SetArgs([]string{"chat", "--server", ts.URL})
					execErr = root.Execute()
				})
			})

			Expect(execErr).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Flip the second fraction and multiply."))

			state, err := dotdir.NewManager().LoadThreadState("")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).NotTo(BeNil())
			Expect(state.Head).To(Equal("head-1"))
			Expect(state.Messages).To(HaveLen(2))
			Expect(state.Messages[0].Role).To(Equal("learner"))
			Expect(state.Messages[0].Content).To(Equal("how do I divide fractions"))
			Expect(state.Messages[1].Role).To(Equal("mentor"))
			Expect(state.Messages[1].Content).To(Equal("Flip the second fraction and multiply."))
		})

		It("resumes from the checked-out thread head", func() {
			prior := &dotdir.ThreadState{
				Head: "parent-hash",
				Messages: []dotdir.ThreadMessage{
					{Role: "learner", Content: "earlier question"},
					{Role: "mentor", Content: "earlier answer"},
				},
			}
			Expect(dotdir.NewManager().SaveThreadState(prior, "")).To(Succeed())

			ts := chatServer("parent-hash", "A follow-up answer.", "head-2")
			defer ts.Close()

			var execErr error
			captureStdout(func() {
				withStdin("a follow-up\n", func() {
					root := newTestRoot(NewChatCmd())
					root.SetArgs([]string{"chat", "--server", ts.URL})
					execErr = root.Execute()
				})
			})

			Expect(execErr).NotTo(HaveOccurred())

			state, err := dotdir.NewManager().LoadThreadState("")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Head).To(Equal("head-2"))
			Expect(state.Messages).To(HaveLen(4))
		})

		It("starts over with --new", func() {
			prior := &dotdir.ThreadState{
				Head:     "parent-hash",
				Messages: []dotdir.ThreadMessage{{Role: "learner", Content: "old"}},
			}
			Expect(dotdir.NewManager().SaveThreadState(prior, "")).To(Succeed())

			ts := chatServer("", "Fresh start.", "head-3")
			defer ts.Close()

			var execErr error
			captureStdout(func() {
				withStdin("hello\n", func() {
					root := newTestRoot(NewChatCmd())
					root.SetArgs([]string{"chat", "--new", "--server", ts.URL})
					execErr = root.Execute()
				})
			})

			Expect(execErr).NotTo(HaveOccurred())

			state, err := dotdir.NewManager().LoadThreadState("")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Head).To(Equal("head-3"))
			Expect(state.Messages).To(HaveLen(2))
		})

		It("writes a transcript file when asked", func() {
			ts := chatServer("", "Subnets split networks.", "head-4")
			defer ts.Close()

			transcriptPath := filepath.Join(tmpDir, "session.md")

			var execErr error
			captureStdout(func() {
				withStdin("what is a subnet\n", func() {
					root := newTestRoot(NewChatCmd())
					root.SetArgs([]string{"chat", "--server", ts.URL, "--transcript", transcriptPath})
					execErr = root.Execute()
				})
			})

			Expect(execErr).NotTo(HaveOccurred())

			data, err := os.ReadFile(transcriptPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("**learner:** what is a subnet"))
			Expect(string(data)).To(ContainSubstring("**mentor:** Subnets split networks."))
		})

		It("errors on empty piped input", func() {
			var execErr error
			captureStdout(func() {
				withStdin("", func() {
					root := newTestRoot(NewChatCmd())
					root.SetArgs([]string{"chat"})
					execErr = root.Execute()
				})
			})

			Expect(execErr).To(HaveOccurred())
			Expect(execErr.Error()).To(ContainSubstring("no prompt received on stdin"))
		})

		It("points at auth login when the server rejects the session", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintln(w, `{"error": "no session"}`)
			}))
			defer ts.Close()

			var execErr error
			captureStdout(func() {
				withStdin("anything\n", func() {
					root := newTestRoot(NewChatCmd())
					root.SetArgs([]string{"chat", "--server", ts.URL})
					execErr = root.Execute()
				})
			})

			Expect(execErr).To(HaveOccurred())
			Expect(execErr.Error()).To(ContainSubstring("auth login"))
		})
	})

	Describe("transcript rendering", func() {
		It("writes one block per message in order", func() {
			tmpDir := GinkgoT().TempDir()
			path := filepath.Join(tmpDir, "t.md")

			messages := []dotdir.ThreadMessage{
				{Role: "learner", Content: "q1"},
				{Role: "mentor", Content: "a1"},
				{Role: "learner", Content: "q2"},
			}
			Expect(writeTranscript(path, messages)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("**learner:** q1\n\n**mentor:** a1\n\n**learner:** q2\n"))
		})
	})
})
