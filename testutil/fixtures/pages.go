// =============================================================================
// 📄 测试页面样例
// =============================================================================
// 为 htmlsearch 与命令行测试提供预置 HTML 文档
// =============================================================================
package fixtures

// LoginPage 登录页面
const LoginPage = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
  <form id="login" name="login-form" class="form card">
    <input id="user" name="username" class="field" type="text" value="alice">
    <input id="pass" name="password" class="field secret" type="password">
    <input id="remember" name="remember" type="checkbox" checked>
    <select id="lang" name="lang">
      <option value="en" selected>English</option>
      <option value="fr">Français</option>
    </select>
    <button id="submit" class="btn btn-primary" type="submit">Sign in</button>
    <button id="reset" class="btn" type="reset" disabled>Reset</button>
  </form>
  <div id="banner" class="notice" style="display: none">Welcome back</div>
  <div id="hint" hidden>Forgot your password?</div>
  <a href="/help" class="link">Help</a>
  <a href="/signup" class="link external">  Create account  </a>
</body>
</html>`

// ListPage 列表页面
const ListPage = `<!DOCTYPE html>
<html>
<body>
  <ul id="items">
    <li class="item" data-state="done">Write spec</li>
    <li class="item" data-state="open">Write code</li>
    <li class="item active" data-state="open">Write tests</li>
  </ul>
  <p class="summary">3 items, <b>2</b> open</p>
</body>
</html>`

// EmptyPage 空页面
const EmptyPage = `<!DOCTYPE html><html><body></body></html>`
