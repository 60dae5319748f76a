package scenarios

import (
	"github.com/apichallenge/api-test-harness/apidef"
	m "github.com/apichallenge/api-test-harness/framework/matchers"
	"github.com/apichallenge/api-test-harness/framework/runner"
)

func doAuthenticationTests(t *runner.T) {
	t.Run("register", doRegisterTest)
	t.Run("login", doLoginTests)
}

func doRegisterTest(t *runner.T) {
	client := StartServer(t)
	user := apiContext(t).config.User
	params := apidef.RegisterParams{Email: user.Email, Password: user.Password, Role: user.Role}

	resp := client.Register(t, params)
	m.RequireThat(t, resp, m.AllOf(
		IsSuccessful(),
		HasSuccess(true),
		HasMessage(apidef.MessageCreated),
	))

	resp = client.Register(t, params)
	m.AssertThat(t, resp, m.AllOf(
		IsNotSuccessful(),
		HasSuccess(false),
		HasMessage(apidef.MessageAlreadyRegistered),
	))
}

func doLoginTests(t *runner.T) {
	client := StartServer(t)
	user := apiContext(t).config.User
	client.EnsureRegistered(t, user)

	t.Run("valid credentials", func(t *runner.T) {
		resp := client.Login(t, user.Email, user.Password)
		m.AssertThat(t, resp, m.AllOf(
			IsSuccessful(),
			HasSuccess(true),
			HasNonEmptyToken(),
		))
	})

	for _, login := range apiContext(t).invalidLogins {
		login := login
		t.Run("invalid credentials: "+login.Name, func(t *runner.T) {
			resp := client.Login(t, login.Email, login.Password)
			m.AssertThat(t, resp, m.AllOf(
				IsSuccessful(),
				HasSuccess(true),
				HasEmptyToken(),
			))
		})
	}
}
