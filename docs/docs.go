// Package docs registra el documento OpenAPI que sirve /swagger.
// Se regenera con: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "index"
                ],
                "summary": "Mensaje de bienvenida",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/health_check": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Estado de la base de datos",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/owners": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "owners"
                ],
                "summary": "Listar dueños",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "owners"
                ],
                "summary": "Registrar dueño",
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/owners/{ownerID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "owners"
                ],
                "summary": "Dueño con sus mascotas",
                "parameters": [
                    {
                        "type": "string",
                        "name": "ownerID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "owners"
                ],
                "summary": "Actualizar dueño",
                "parameters": [
                    {
                        "type": "string",
                        "name": "ownerID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "owners"
                ],
                "summary": "Eliminar dueño",
                "parameters": [
                    {
                        "type": "string",
                        "name": "ownerID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/pets": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Listar mascotas",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Registrar mascota",
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Obtener mascota",
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Actualizar mascota",
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pets"
                ],
                "summary": "Eliminar mascota",
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/pets/{petID}/services": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Historial de servicios de una mascota",
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/vets": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vets"
                ],
                "summary": "Listar veterinarios",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vets"
                ],
                "summary": "Registrar veterinario",
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/vets/options": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vets"
                ],
                "summary": "Opciones de veterinarios (id + nombre)",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/vets/{vetID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vets"
                ],
                "summary": "Obtener veterinario",
                "parameters": [
                    {
                        "type": "string",
                        "name": "vetID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vets"
                ],
                "summary": "Actualizar veterinario",
                "parameters": [
                    {
                        "type": "string",
                        "name": "vetID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vets"
                ],
                "summary": "Eliminar veterinario",
                "parameters": [
                    {
                        "type": "string",
                        "name": "vetID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/services": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Registrar servicio (visita clínica)",
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/services/{serviceID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Detalle de un servicio",
                "parameters": [
                    {
                        "type": "string",
                        "name": "serviceID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Actualizar servicio",
                "parameters": [
                    {
                        "type": "string",
                        "name": "serviceID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Eliminar servicio",
                "parameters": [
                    {
                        "type": "string",
                        "name": "serviceID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/services/{serviceID}/groomings": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Agregar grooming a un servicio",
                "parameters": [
                    {
                        "type": "string",
                        "name": "serviceID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/services/{serviceID}/preventive-care": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Agregar cuidados preventivos a un servicio",
                "parameters": [
                    {
                        "type": "string",
                        "name": "serviceID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/services/{serviceID}/surgery": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Agregar cirugía a un servicio",
                "parameters": [
                    {
                        "type": "string",
                        "name": "serviceID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/surgeries/{surgeryID}": {
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Actualizar cirugía",
                "parameters": [
                    {
                        "type": "string",
                        "name": "surgeryID",
                        "in": "path",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Eliminar cirugía",
                "parameters": [
                    {
                        "type": "string",
                        "name": "surgeryID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/groomings/{groomingID}": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Eliminar grooming",
                "parameters": [
                    {
                        "type": "string",
                        "name": "groomingID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/preventive-care/{preventiveCareID}": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Eliminar cuidado preventivo",
                "parameters": [
                    {
                        "type": "string",
                        "name": "preventiveCareID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/statistics/services": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "statistics"
                ],
                "summary": "Instancias por tipo de servicio",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/statistics/pet-types": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "statistics"
                ],
                "summary": "Visitas por tipo de mascota",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Vet Clinic Records API",
	Description:      "Dueños, mascotas, veterinarios e historial clínico (grooming, cuidados preventivos, cirugías).",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
