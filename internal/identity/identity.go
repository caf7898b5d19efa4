// Package identity carrega o contexto do usuário autenticado sem acoplar
// os pacotes de domínio à camada de sessão.
package identity

// Identity representa quem está fazendo a requisição. O valor zero é o
// visitante anônimo.
type Identity struct {
	UserID        int64
	Username      string
	IsStaff       bool
	Authenticated bool
}

func Anonymous() Identity {
	return Identity{}
}
