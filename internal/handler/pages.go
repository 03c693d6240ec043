package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// LoginPage serves login.html from dir. It is public so unauthenticated
// browsers redirected by the session gate have somewhere to land.
func LoginPage(dir string) echo.HandlerFunc {
	page := filepath.Join(dir, "login.html")
	return func(c echo.Context) error {
		if err := c.File(page); err != nil {
			return c.HTML(http.StatusOK, fallbackLogin)
		}
		return nil
	}
}

const fallbackLogin = `<!doctype html>
<html lang="pt-BR"><head><meta charset="utf-8"><title>Login</title></head>
<body>
<form id="f">
<input name="email" type="email" placeholder="email" required>
<input name="password" type="password" placeholder="senha" required>
<button>Entrar</button>
</form>
<script>
document.getElementById('f').onsubmit = async (e) => {
  e.preventDefault();
  const d = new FormData(e.target);
  const r = await fetch('/api/login', {method: 'POST', headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({email: d.get('email'), password: d.get('password')})});
  if (r.ok) location.href = '/';
};
</script>
</body></html>`
